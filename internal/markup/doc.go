// Package markup is a small markup document model for route templates.
//
// Documents are tokenized with golang.org/x/net/html but assembled without
// HTML5 tree construction, so html/template actions survive in places a
// browser parser would move or drop them. Blocks such as <handler> can be
// captured verbatim so embedded Go code is never tokenized as markup.
//
// An attribute value whose action contains quotes, as in
// href="{{printf "%s" .X}}", cannot be split into attributes reliably. Such
// start tags are kept as written in Node.StartTag and printed unchanged;
// Node.Attr does not see their values.
//
//	doc, err := markup.Parse(src, "handler")
//	if n, ok := doc.ExtractTag("handler"); ok {
//	    code := n.Text()
//	    ...
//	}
//	out := doc.PrettyPrint()
package markup
