package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never have children or end tags.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// rawElements have their content printed verbatim.
var rawElements = map[string]bool{
	"script":   true,
	"style":    true,
	"pre":      true,
	"textarea": true,
}

// Parse builds a Document from src. Unlike html.Parse it performs no HTML5
// tree construction: elements nest exactly as written, so template actions
// between table rows or around list items are preserved. Elements named in
// rawTags have their content captured as source text without tokenizing.
func Parse(src string, rawTags ...string) (*Document, error) {
	p := &parser{
		src:  src,
		raw:  make(map[string]bool, len(rawTags)),
		root: &Node{Type: DocumentNode, Line: 1},
	}
	for _, t := range rawTags {
		p.raw[strings.ToLower(t)] = true
	}
	p.stack = []*Node{p.root}

	if err := p.run(); err != nil {
		return nil, err
	}
	return &Document{root: p.root}, nil
}

type parser struct {
	src   string
	raw   map[string]bool
	root  *Node
	stack []*Node
}

func (p *parser) top() *Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) run() error {
	base := 0
	for base < len(p.src) {
		next, err := p.tokenize(base)
		if err != nil {
			return err
		}
		if next < 0 {
			return nil
		}
		base = next
	}
	return nil
}

// tokenize consumes src from base until EOF or until a raw tag has been
// captured. It returns the offset to resume from, or -1 at EOF.
func (p *parser) tokenize(base int) (int, error) {
	z := html.NewTokenizer(strings.NewReader(p.src[base:]))
	offset := base

	for {
		tt := z.Next()
		raw := z.Raw()
		start := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return -1, nil
			}
			return 0, z.Err()

		case html.TextToken:
			p.top().appendChild(&Node{Type: TextNode, Data: string(raw), Line: p.line(start)})

		case html.CommentToken:
			p.top().appendChild(&Node{Type: CommentNode, Data: string(raw), Line: p.line(start)})

		case html.DoctypeToken:
			p.top().appendChild(&Node{Type: DoctypeNode, Data: string(raw), Line: p.line(start)})

		case html.SelfClosingTagToken:
			startTag := quotedActionTag(raw)
			tok := z.Token()
			p.top().appendChild(&Node{
				Type:        ElementNode,
				Tag:         tok.Data,
				Attrs:       tok.Attr,
				StartTag:    startTag,
				SelfClosing: true,
				Line:        p.line(start),
			})

		case html.StartTagToken:
			startTag := quotedActionTag(raw)
			tok := z.Token()
			n := &Node{
				Type:     ElementNode,
				Tag:      tok.Data,
				Attrs:    tok.Attr,
				StartTag: startTag,
				Line:     p.line(start),
			}
			p.top().appendChild(n)

			if p.raw[tok.Data] {
				return p.captureRaw(n, offset)
			}
			if voidElements[tok.Data] {
				continue
			}
			if rawElements[tok.Data] {
				n.Raw = true
			}
			p.stack = append(p.stack, n)

		case html.EndTagToken:
			name, _ := z.TagName()
			p.close(string(name))
		}
	}
}

// quotedActionTag returns a copy of the start tag raw when some {{ }}
// action inside it contains a quote, and "" otherwise. It must run before
// Token, which rewrites the tokenizer buffer in place.
func quotedActionTag(raw []byte) string {
	tag := string(raw)
	rest := tag
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			return ""
		}
		rest = rest[i+2:]
		j := strings.Index(rest, "}}")
		if j < 0 {
			return ""
		}
		if strings.ContainsAny(rest[:j], `"'`) {
			return tag
		}
		rest = rest[j+2:]
	}
}

// captureRaw stores the source between the start tag ending at offset and
// the matching end tag as n's content, and returns the offset just past the
// end tag.
func (p *parser) captureRaw(n *Node, offset int) (int, error) {
	closing := "</" + n.Tag
	rest := p.src[offset:]
	idx := indexFold(rest, closing)
	if idx < 0 {
		return 0, fmt.Errorf("line %d: <%s> is never closed", n.Line, n.Tag)
	}
	gt := strings.IndexByte(rest[idx:], '>')
	if gt < 0 {
		return 0, fmt.Errorf("line %d: unterminated </%s>", n.Line, n.Tag)
	}

	n.Raw = true
	n.appendChild(&Node{Type: TextNode, Data: rest[:idx], Line: p.line(offset)})
	return offset + idx + gt + 1, nil
}

// close pops the stack up to and including the innermost open element
// named tag. Stray end tags are dropped.
func (p *parser) close(tag string) {
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].Tag == tag {
			p.stack = p.stack[:i]
			return
		}
	}
}

func (p *parser) line(offset int) int {
	return 1 + strings.Count(p.src[:offset], "\n")
}

func indexFold(s, substr string) int {
	return bytes.Index(bytes.ToLower([]byte(s)), bytes.ToLower([]byte(substr)))
}
