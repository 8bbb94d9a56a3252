package routes

import (
	"go/token"
	"path/filepath"
	"strings"

	"github.com/vango-dev/routekit/internal/errors"
)

// reservedParams are names taken by the generated handler signature.
var reservedParams = map[string]bool{
	"r": true,
	"w": true,
}

// ClassifySegment classifies one directory segment.
//
//	users      literal
//	[id]       parameter
//	blog.post  dotted, parts: literal literal
//	docs.      dotted, parts: literal index
func ClassifySegment(raw string) Segment {
	if strings.Contains(raw, ".") {
		seg := Segment{Kind: SegmentDotted, Raw: raw}
		for _, part := range strings.Split(raw, ".") {
			seg.Parts = append(seg.Parts, classifyPart(part))
		}
		return seg
	}
	return classifyPart(raw)
}

func classifyPart(raw string) Segment {
	switch {
	case raw == "":
		return Segment{Kind: SegmentIndex, Raw: raw}
	case len(raw) > 2 && raw[0] == '[' && raw[len(raw)-1] == ']':
		return Segment{Kind: SegmentParam, Raw: raw, Name: raw[1 : len(raw)-1]}
	default:
		return Segment{Kind: SegmentLiteral, Raw: raw, Name: raw}
	}
}

// Resolve derives the descriptor of the route file at path, which must lie
// under root. The file name itself is dropped; only directories count.
// Resolve performs no I/O.
func Resolve(root, path string) (Descriptor, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Descriptor{}, errors.New("E165").
			WithFile(path).
			WithDetailf("%s is not inside the routes root %s", path, root)
	}

	var raw []string
	if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
		raw = strings.Split(dir, "/")
	}

	// Flatten dotted segments; every part maps to exactly one URL level.
	var parts []Segment
	for _, r := range raw {
		seg := ClassifySegment(r)
		if seg.Kind == SegmentDotted {
			parts = append(parts, seg.Parts...)
		} else {
			parts = append(parts, seg)
		}
	}

	var (
		levels []string
		tokens []string
		params []Param
		seen   = map[string]bool{}
	)
	for i, part := range parts {
		switch part.Kind {
		case SegmentLiteral:
			levels = append(levels, part.Name)
			tokens = append(tokens, part.Name)
		case SegmentParam:
			if !token.IsIdentifier(part.Name) || reservedParams[part.Name] {
				return Descriptor{}, errors.New("E110").
					WithFile(path).
					WithDetailf("%q is not a usable parameter name", part.Name).
					WithSuggestion("Use a Go identifier other than r or w, e.g. [id] or [slug]")
			}
			if seen[part.Name] {
				return Descriptor{}, errors.New("E111").
					WithFile(path).
					WithDetailf("parameter %q is declared more than once", part.Name)
			}
			seen[part.Name] = true
			params = append(params, Param{Name: part.Name, Position: len(params)})
			levels = append(levels, "<"+part.Name+">")
			tokens = append(tokens, part.Name)
		case SegmentIndex:
			if i != len(parts)-1 {
				return Descriptor{}, errors.New("E116").
					WithFile(path).
					WithDetailf("segment %q has an empty part before the end of the path", filepath.ToSlash(filepath.Dir(rel)))
			}
			levels = append(levels, "")
			tokens = append(tokens, "index")
		}
	}

	return Descriptor{
		Pattern:    "/" + strings.Join(levels, "/"),
		Identifier: sanitizeIdentifier(strings.Join(tokens, "_")),
		Params:     params,
	}, nil
}

// sanitizeIdentifier maps s onto [A-Za-z0-9_] and keeps it from starting
// with a digit.
func sanitizeIdentifier(s string) string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	for i, c := range b {
		if !isIdentByte(c) {
			b[i] = '_'
		}
	}
	if b[0] >= '0' && b[0] <= '9' {
		return "_" + string(b)
	}
	return string(b)
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
