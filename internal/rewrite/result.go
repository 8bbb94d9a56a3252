package rewrite

import (
	"go/ast"

	"github.com/vango-dev/routekit/internal/handler"
	"github.com/vango-dev/routekit/internal/routes"
)

// Decl is a support declaration carried verbatim into the generated module.
type Decl struct {
	// Names are the package-level names the declaration introduces.
	Names  []string
	Source string
}

// Result is the rewritten form of one route file.
type Result struct {
	File       string
	Descriptor routes.Descriptor

	Imports  []handler.Import
	Handlers []*handler.IR
	Support  []Decl

	// Template and Markup are set for pages: the template name and the
	// markup with the handler block removed.
	Template string
	Markup   string
}

func supportDecls(frag *handler.Fragment, skip map[ast.Decl]bool) ([]Decl, error) {
	var decls []Decl
	for _, d := range frag.Decls {
		if skip[d] {
			continue
		}
		if fn, ok := d.(*ast.FuncDecl); ok {
			fn.Doc = stripDirectives(fn.Doc)
		}
		src, err := frag.Print(d)
		if err != nil {
			return nil, err
		}
		decls = append(decls, Decl{Names: handler.DeclNames(d), Source: src})
	}
	return decls, nil
}

// stripDirectives removes //go: lines from a doc comment.
func stripDirectives(doc *ast.CommentGroup) *ast.CommentGroup {
	if doc == nil {
		return nil
	}
	var kept []*ast.Comment
	for _, c := range doc.List {
		if len(c.Text) >= 5 && c.Text[:5] == "//go:" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil
	}
	return &ast.CommentGroup{List: kept}
}
