package rewrite

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/handler"
	"github.com/vango-dev/routekit/internal/markup"
	"github.com/vango-dev/routekit/internal/routes"
)

// HandlerTag is the element that embeds Go code in a page.
const HandlerTag = "handler"

// loaderNames are accepted names for a page's first function.
var loaderNames = map[string]bool{
	"load": true,
	"Load": true,
}

// Page rewrites a page document into a GET handler that renders template.
// The first function of the page's <handler> block is the loader; every
// return in it becomes a render of template with the returned values as
// context. A page without a handler block renders with no context.
func Page(file string, src []byte, desc routes.Descriptor, template string) (*Result, error) {
	doc, err := markup.Parse(string(src), HandlerTag)
	if err != nil {
		return nil, errors.New("E100").WithFile(file).Wrap(err)
	}

	var frag *handler.Fragment
	var loader *ast.FuncDecl

	if n, ok := doc.ExtractTag(HandlerTag); ok {
		frag, err = handler.ParseFragment(file, n.Text(), n.Line)
		if err != nil {
			return nil, err
		}
		funcs := frag.Funcs()
		if len(funcs) == 0 || !loaderNames[funcs[0].Name.Name] {
			e := errors.New("E101").
				WithLocation(file, n.Line, 0).
				WithExample("<handler>\nfunc load() map[string]any {\n\treturn map[string]any{\"title\": \"Hello\"}\n}\n</handler>")
			if len(funcs) > 0 {
				e.WithDetailf("the first function is %s; it must be named load", funcs[0].Name.Name)
			}
			return nil, e
		}
		loader = funcs[0]
	} else {
		frag = handler.Synthesize(file, "load")
		loader = frag.Funcs()[0]
	}

	ir, err := frag.Build(loader, desc.ParamNames())
	if err != nil {
		return nil, err
	}
	ir.Rename(routes.HandlerName(desc.Identifier, ""))
	ir.Method = "GET"
	rewriteReturns(ir, template)

	support, err := supportDecls(frag, map[ast.Decl]bool{loader: true})
	if err != nil {
		return nil, err
	}

	return &Result{
		File:       file,
		Descriptor: desc,
		Imports:    frag.Imports,
		Handlers:   []*handler.IR{ir},
		Support:    support,
		Template:   template,
		Markup:     doc.PrettyPrint(),
	}, nil
}

// rewriteReturns turns every collected return into a render call and makes
// the handler return blueprint.Response. Named results become locals so
// that bare returns still carry them.
func rewriteReturns(ir *handler.IR, template string) {
	multi := ir.ResultCount() > 1
	var named []ast.Expr
	if fields := ir.NamedResults(); fields != nil {
		var decls []ast.Stmt
		for _, f := range fields {
			for _, name := range f.Names {
				if name.Name != "_" {
					named = append(named, ast.NewIdent(name.Name))
				}
			}
			decls = append(decls, &ast.DeclStmt{Decl: &ast.GenDecl{
				Tok:   token.VAR,
				Specs: []ast.Spec{&ast.ValueSpec{Names: f.Names, Type: f.Type}},
			}})
		}
		ir.Prepend(decls...)
	}

	for _, ret := range ir.Returns {
		args := ret.Results
		if len(args) == 0 {
			args = named
		}
		if call, ok := forwardedCall(args); ok && multi {
			ret.Results = []ast.Expr{renderResultsCall(template, call)}
			continue
		}
		ret.Results = []ast.Expr{renderCall(template, args)}
	}

	ir.SetResults(&ast.FieldList{List: []*ast.Field{{Type: blueprintType("Response")}}})

	if !ir.EndsInReturn() {
		ir.Append(&ast.ReturnStmt{Results: []ast.Expr{renderCall(template, named)}})
	}
}

func renderCall(template string, args []ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  blueprintType("Render"),
		Args: append([]ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(template)}}, args...),
	}
}

// forwardedCall reports whether a return forwards a single call, as in
// return fetch() from a loader with several results.
func forwardedCall(results []ast.Expr) (*ast.CallExpr, bool) {
	if len(results) != 1 {
		return nil, false
	}
	call, ok := results[0].(*ast.CallExpr)
	return call, ok
}

// renderResultsCall builds blueprint.RenderResults(template)(call), which
// spreads every value of call into the render.
func renderResultsCall(template string, call *ast.CallExpr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun: &ast.CallExpr{
			Fun:  blueprintType("RenderResults"),
			Args: []ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(template)}},
		},
		Args: []ast.Expr{call},
	}
}

func blueprintType(name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: ast.NewIdent("blueprint"), Sel: ast.NewIdent(name)}
}
