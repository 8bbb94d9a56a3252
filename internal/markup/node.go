package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeType identifies the kind of a Node.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
)

// Node is one node of a parsed document. Text, comment and doctype nodes
// keep their source bytes in Data; elements keep their tag name in Tag.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []html.Attribute
	Data     string
	Parent   *Node
	Children []*Node

	// SelfClosing records a start tag written as <tag/>.
	SelfClosing bool

	// Raw marks an element whose content is kept verbatim, such as script
	// or a handler block. Its single text child holds the content.
	Raw bool

	// StartTag holds an element's start tag as written when an attribute
	// value contains a template action with quotes, such as
	// href="{{printf "%s" .X}}". The tokenizer splits such values, so Attrs
	// is unreliable and the tag is printed from StartTag unchanged.
	StartTag string

	// Line is the 1-based source line where the node's content starts.
	Line int
}

func (n *Node) appendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

func (n *Node) remove() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Text returns the concatenated text content of n.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == TextNode {
			b.WriteString(n.Data)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Document is a parsed markup document.
type Document struct {
	root *Node
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return d.root
}

// FindTag returns the first element named tag in document order.
func (d *Document) FindTag(tag string) (*Node, bool) {
	tag = strings.ToLower(tag)
	var found *Node
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		if n.Type == ElementNode && n.Tag == tag {
			found = n
			return true
		}
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return found, found != nil
}

// ExtractTag removes the first element named tag from the document and
// returns it.
func (d *Document) ExtractTag(tag string) (*Node, bool) {
	n, ok := d.FindTag(tag)
	if !ok {
		return nil, false
	}
	n.remove()
	return n, true
}
