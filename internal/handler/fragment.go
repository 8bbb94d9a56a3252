package handler

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/scanner"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/vango-dev/routekit/internal/errors"
)

// syntheticPackage is the package clause given to fragments that have none.
const syntheticPackage = "package routekit; "

// Import is a hoisted import declaration.
type Import struct {
	// Name is the explicit import name, if any ("_" and "." included).
	Name string
	Path string
}

// String returns the import as it appears inside an import block.
func (i Import) String() string {
	if i.Name == "" {
		return strconv.Quote(i.Path)
	}
	return i.Name + " " + strconv.Quote(i.Path)
}

// Binding returns the identifier the import binds in the file scope, or
// "" for blank and dot imports. Implicit names follow the usual convention
// of the last path element with any major version suffix removed.
func (i Import) Binding() string {
	switch i.Name {
	case "_", ".":
		return ""
	case "":
	default:
		return i.Name
	}

	p := i.Path
	base := path.Base(p)
	if isMajorVersion(base) && path.Dir(p) != "." {
		base = path.Base(path.Dir(p))
	}
	if dot := strings.Index(base, ".v"); dot > 0 && isMajorVersion(base[dot+1:]) {
		base = base[:dot]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.NewReplacer("-", "_", ".", "_").Replace(base)
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// Fragment is a parsed piece of handler code: the contents of a page's
// <handler> block or a whole endpoint file.
type Fragment struct {
	Filename string
	Fset     *token.FileSet
	File     *ast.File

	// Imports are the fragment's imports in source order.
	Imports []Import

	// Decls are the remaining top-level declarations in source order.
	Decls []ast.Decl
}

// ParseFragment parses src as Go source. The package clause is optional.
// line is the line of filename on which src begins; positions in errors
// refer to filename.
func ParseFragment(filename, src string, line int) (*Fragment, error) {
	if line < 1 {
		line = 1
	}

	prefix := ""
	if !hasPackageClause(src) {
		prefix = syntheticPackage
	}
	text := fmt.Sprintf("//line %s:%d\n%s%s", filename, line, prefix, src)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, text, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, parseError(filename, err)
	}

	f := &Fragment{Filename: filename, Fset: fset, File: file}
	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			for _, spec := range gd.Specs {
				is := spec.(*ast.ImportSpec)
				p, err := strconv.Unquote(is.Path.Value)
				if err != nil {
					return nil, parseError(filename, err)
				}
				imp := Import{Path: p}
				if is.Name != nil {
					imp.Name = is.Name.Name
				}
				f.Imports = append(f.Imports, imp)
			}
			continue
		}
		f.Decls = append(f.Decls, decl)
	}
	return f, nil
}

// Synthesize returns a fragment holding a single empty function named name,
// for pages that declare no handler code.
func Synthesize(filename, name string) *Fragment {
	fset := token.NewFileSet()
	fn := &ast.FuncDecl{
		Name: ast.NewIdent(name),
		Type: &ast.FuncType{Params: &ast.FieldList{}},
		Body: &ast.BlockStmt{},
	}
	return &Fragment{
		Filename: filename,
		Fset:     fset,
		File:     &ast.File{Name: ast.NewIdent("routekit"), Decls: []ast.Decl{fn}},
		Decls:    []ast.Decl{fn},
	}
}

// Funcs returns the fragment's top-level functions, excluding methods.
func (f *Fragment) Funcs() []*ast.FuncDecl {
	var funcs []*ast.FuncDecl
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil {
			funcs = append(funcs, fn)
		}
	}
	return funcs
}

// Position returns the source position of pos, mapped to the route file.
func (f *Fragment) Position(pos token.Pos) token.Position {
	return f.Fset.Position(pos)
}

// Print renders a node of the fragment as Go source, keeping the comments
// that fall inside it.
func (f *Fragment) Print(node ast.Node) (string, error) {
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, f.Fset, &printer.CommentedNode{Node: node, Comments: f.File.Comments}); err != nil {
		return "", errors.New("E100").WithFile(f.Filename).Wrap(err)
	}
	return buf.String(), nil
}

// DeclNames returns the package-level names a declaration introduces.
// Methods are reported as Type.Method.
func DeclNames(decl ast.Decl) []string {
	var names []string
	switch d := decl.(type) {
	case *ast.FuncDecl:
		if d.Recv == nil || len(d.Recv.List) == 0 {
			return []string{d.Name.Name}
		}
		return []string{receiverType(d.Recv.List[0].Type) + "." + d.Name.Name}
	case *ast.GenDecl:
		for _, spec := range d.Specs {
			switch s := spec.(type) {
			case *ast.TypeSpec:
				names = append(names, s.Name.Name)
			case *ast.ValueSpec:
				for _, n := range s.Names {
					if n.Name != "_" {
						names = append(names, n.Name)
					}
				}
			}
		}
	}
	return names
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	}
	return "?"
}

func hasPackageClause(src string) bool {
	var s scanner.Scanner
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	s.Init(file, []byte(src), nil, 0)
	_, tok, _ := s.Scan()
	return tok == token.PACKAGE
}

func parseError(filename string, err error) error {
	var list scanner.ErrorList
	if stderrors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return errors.New("E100").
			WithLocation(first.Pos.Filename, first.Pos.Line, first.Pos.Column).
			WithDetail(first.Msg)
	}
	return errors.New("E100").WithFile(filename).Wrap(err)
}
