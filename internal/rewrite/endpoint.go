package rewrite

import (
	"go/ast"
	"strings"

	"github.com/vango-dev/routekit/internal/handler"
	"github.com/vango-dev/routekit/internal/routes"
)

// Endpoint rewrites an endpoint file. Each top-level function is the
// handler for the HTTP method it is named after; its name becomes
// <identifier>_<name>. Return statements are left alone.
func Endpoint(file string, src []byte, desc routes.Descriptor) (*Result, error) {
	frag, err := handler.ParseFragment(file, string(src), 1)
	if err != nil {
		return nil, err
	}

	handlers := make(map[ast.Decl]bool)
	res := &Result{
		File:       file,
		Descriptor: desc,
		Imports:    frag.Imports,
	}

	for _, fn := range frag.Funcs() {
		method := strings.ToUpper(fn.Name.Name)
		ir, err := frag.Build(fn, desc.ParamNames())
		if err != nil {
			return nil, err
		}
		ir.Rename(routes.HandlerName(desc.Identifier, fn.Name.Name))
		ir.Method = method

		res.Handlers = append(res.Handlers, ir)
		handlers[fn] = true
	}

	res.Support, err = supportDecls(frag, handlers)
	if err != nil {
		return nil, err
	}
	return res, nil
}
