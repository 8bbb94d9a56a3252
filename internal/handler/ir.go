package handler

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/vango-dev/routekit/internal/errors"
)

// RequestParam is the name of the implicit request parameter.
const RequestParam = "r"

// ParamSource tells where a handler parameter came from.
type ParamSource int

const (
	FromRequest ParamSource = iota
	FromDeclared
	FromPath
)

// Param is one parameter of a rewritten handler.
type Param struct {
	Name     string
	Type     string
	Variadic bool
	Source   ParamSource
}

// IR is the intermediate form of one handler: a function whose signature
// has been extended with the request and path parameters and whose return
// statements have been collected for rewriting. An IR is built once and
// printed once.
type IR struct {
	Name   string
	Method string

	// Params is the full parameter list: request, declared, path.
	Params []Param

	Results *ast.FieldList
	Body    []ast.Stmt

	// Returns are the body's return statements, not counting those of
	// nested function literals.
	Returns []*ast.ReturnStmt

	// Decl is the function as it will be printed.
	Decl *ast.FuncDecl

	frag *Fragment
}

// Build turns fn, a top-level function of the fragment, into an IR. The
// function is modified in place: its doc comment and //go: directives are
// dropped, unnamed parameters are named "_", r *http.Request is prepended
// and one string parameter per path parameter is appended.
func (f *Fragment) Build(fn *ast.FuncDecl, pathParams []string) (*IR, error) {
	pos := f.Position(fn.Pos())
	fail := func(format string, args ...any) error {
		return errors.New("E102").
			WithLocation(pos.Filename, pos.Line, 0).
			WithDetailf("%s: "+format, append([]any{fn.Name.Name}, args...)...)
	}

	if fn.Body == nil {
		return nil, fail("handler has no body")
	}
	if fn.Type.TypeParams != nil && fn.Type.TypeParams.NumFields() > 0 {
		return nil, fail("generic handlers are not supported")
	}

	fn.Doc = nil

	taken := map[string]bool{RequestParam: true}
	for _, p := range pathParams {
		taken[p] = true
	}

	params := []Param{{Name: RequestParam, Type: "*http.Request", Source: FromRequest}}
	fields := []*ast.Field{{
		Names: []*ast.Ident{ast.NewIdent(RequestParam)},
		Type: &ast.StarExpr{X: &ast.SelectorExpr{
			X:   ast.NewIdent("http"),
			Sel: ast.NewIdent("Request"),
		}},
	}}

	variadic := false
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			if len(field.Names) == 0 {
				field.Names = []*ast.Ident{ast.NewIdent("_")}
			}
			_, isVariadic := field.Type.(*ast.Ellipsis)
			typ := types.ExprString(field.Type)
			if isVariadic {
				variadic = true
				typ = strings.TrimPrefix(typ, "...")
			}
			for _, name := range field.Names {
				if taken[name.Name] {
					if name.Name == RequestParam {
						return nil, fail("parameter %q is reserved for the request", name.Name)
					}
					return nil, fail("parameter %q collides with a path parameter", name.Name)
				}
				if name.Name != "_" {
					taken[name.Name] = true
				}
				params = append(params, Param{
					Name:     name.Name,
					Type:     typ,
					Variadic: isVariadic,
					Source:   FromDeclared,
				})
			}
			fields = append(fields, field)
		}
	}

	if variadic && len(pathParams) > 0 {
		return nil, fail("a variadic parameter cannot be followed by path parameters %v", pathParams)
	}

	for _, p := range pathParams {
		params = append(params, Param{Name: p, Type: "string", Source: FromPath})
		fields = append(fields, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(p)},
			Type:  ast.NewIdent("string"),
		})
	}

	list := &ast.FieldList{List: fields}
	if fn.Type.Params != nil {
		list.Opening, list.Closing = fn.Type.Params.Opening, fn.Type.Params.Closing
	}
	fn.Type.Params = list

	return &IR{
		Name:    fn.Name.Name,
		Params:  params,
		Results: fn.Type.Results,
		Body:    fn.Body.List,
		Returns: collectReturns(fn.Body),
		Decl:    fn,
		frag:    f,
	}, nil
}

// Rename sets the handler's function name.
func (ir *IR) Rename(name string) {
	ir.Name = name
	ir.Decl.Name = &ast.Ident{NamePos: ir.Decl.Name.NamePos, Name: name}
}

// SetResults replaces the handler's result list.
func (ir *IR) SetResults(results *ast.FieldList) {
	ir.Results = results
	ir.Decl.Type.Results = results
}

// Append adds a statement to the end of the body.
func (ir *IR) Append(stmt ast.Stmt) {
	ir.Decl.Body.List = append(ir.Decl.Body.List, stmt)
	ir.Body = ir.Decl.Body.List
}

// Prepend adds statements to the start of the body.
func (ir *IR) Prepend(stmts ...ast.Stmt) {
	ir.Decl.Body.List = append(stmts, ir.Decl.Body.List...)
	ir.Body = ir.Decl.Body.List
}

// EndsInReturn reports whether the last statement of the body is a return.
func (ir *IR) EndsInReturn() bool {
	if len(ir.Body) == 0 {
		return false
	}
	_, ok := ir.Body[len(ir.Body)-1].(*ast.ReturnStmt)
	return ok
}

// ResultCount returns the number of values the handler returns.
func (ir *IR) ResultCount() int {
	if ir.Results == nil {
		return 0
	}
	return ir.Results.NumFields()
}

// NamedResults returns the result fields when the results are named, or
// nil otherwise.
func (ir *IR) NamedResults() []*ast.Field {
	if ir.Results == nil || len(ir.Results.List) == 0 || len(ir.Results.List[0].Names) == 0 {
		return nil
	}
	return ir.Results.List
}

// Source prints the handler as Go source.
func (ir *IR) Source() (string, error) {
	return ir.frag.Print(ir.Decl)
}

// Fragment returns the fragment the handler was built from.
func (ir *IR) Fragment() *Fragment {
	return ir.frag
}

// Pos returns the position of the handler in its route file.
func (ir *IR) Pos() token.Position {
	return ir.frag.Position(ir.Decl.Pos())
}

func collectReturns(body *ast.BlockStmt) []*ast.ReturnStmt {
	var returns []*ast.ReturnStmt
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt:
			returns = append(returns, n)
		}
		return true
	})
	return returns
}
