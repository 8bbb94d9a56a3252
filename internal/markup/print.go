package markup

import "strings"

const indentUnit = "  "

// PrettyPrint renders the document with one node per line, children
// indented below their parent. Text is trimmed line by line; the content of
// raw elements is written unchanged. The output depends only on the tree.
func (d *Document) PrettyPrint() string {
	var b strings.Builder
	for _, c := range d.root.Children {
		printNode(&b, c, 0)
	}
	return b.String()
}

func printNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	switch n.Type {
	case TextNode:
		for _, line := range strings.Split(n.Data, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteByte('\n')
		}

	case CommentNode, DoctypeNode:
		b.WriteString(indent)
		b.WriteString(strings.TrimSpace(n.Data))
		b.WriteByte('\n')

	case ElementNode:
		b.WriteString(indent)
		writeStartTag(b, n)

		switch {
		case n.SelfClosing || voidElements[n.Tag]:
			b.WriteByte('\n')
		case n.Raw:
			for _, c := range n.Children {
				renderNode(b, c)
			}
			writeEndTag(b, n)
			b.WriteByte('\n')
		case len(n.Children) == 0:
			writeEndTag(b, n)
			b.WriteByte('\n')
		default:
			b.WriteByte('\n')
			for _, c := range n.Children {
				printNode(b, c, depth+1)
			}
			b.WriteString(indent)
			writeEndTag(b, n)
			b.WriteByte('\n')
		}
	}
}

func writeStartTag(b *strings.Builder, n *Node) {
	if n.StartTag != "" {
		b.WriteString(n.StartTag)
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Val))
		b.WriteByte('"')
	}
	if n.SelfClosing {
		b.WriteString("/")
	}
	b.WriteByte('>')
}

func writeEndTag(b *strings.Builder, n *Node) {
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&#34;")

// escapeAttr escapes only what would end or corrupt a double-quoted value,
// leaving template actions such as {{.URL}} readable.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Render writes the document as parsed, without reformatting. Attributes
// are normalised to double quotes, except in start tags kept verbatim
// because an action in them contains quotes.
func (d *Document) Render() string {
	var b strings.Builder
	renderNode(&b, d.root)
	return b.String()
}

func renderNode(b *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode, CommentNode, DoctypeNode:
		b.WriteString(n.Data)
	case ElementNode:
		writeStartTag(b, n)
		if n.SelfClosing || voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			renderNode(b, c)
		}
		writeEndTag(b, n)
	default:
		for _, c := range n.Children {
			renderNode(b, c)
		}
	}
}
