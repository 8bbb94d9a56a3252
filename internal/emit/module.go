package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mvdan.cc/gofumpt/format"

	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/handler"
	"github.com/vango-dev/routekit/internal/rewrite"
)

const (
	// RuntimeImport is the import path of the package generated code uses.
	RuntimeImport = "github.com/vango-dev/routekit/pkg/blueprint"

	// PackageName is the package of the generated module.
	PackageName = "blueprints"

	generatedHeader = "// Code generated by routekit. DO NOT EDIT.\n\n"
)

// reservedBindings are import names the module header already binds.
var reservedBindings = map[string]string{
	"blueprint": RuntimeImport,
	"http":      "net/http",
}

// reservedDecls are package-level names the module header declares.
var reservedDecls = map[string]bool{
	"bp":        true,
	"Blueprint": true,
	"blueprint": true,
	"http":      true,
}

// Route is one registered route of the module.
type Route struct {
	Method  string
	Pattern string
	Name    string
	File    string
}

type block struct {
	file     string
	support  []string
	handlers []string
}

// Module accumulates the handlers of a build pass and serialises them into
// one Go source file. Add rejects anything that would make the file fail
// to compile because of a name clash.
type Module struct {
	name string

	imports  map[string]handler.Import
	bindings map[string]string // binding -> path
	boundBy  map[string]string // binding -> file

	decls     map[string]string // name -> file
	routes    map[string]string // "METHOD pattern" -> file
	templates map[string]string // template -> file

	blocks []block
	table  []Route

	// usesHTTP is set when a route file imports net/http itself.
	usesHTTP bool
}

// NewModule returns an empty module whose blueprint is called name.
func NewModule(name string) *Module {
	return &Module{
		name:      name,
		imports:   make(map[string]handler.Import),
		bindings:  make(map[string]string),
		boundBy:   make(map[string]string),
		decls:     make(map[string]string),
		routes:    make(map[string]string),
		templates: make(map[string]string),
	}
}

// AddTemplate records a template name, rejecting duplicates.
func (m *Module) AddTemplate(name, file string) error {
	if prev, ok := m.templates[name]; ok {
		return errors.New("E113").
			WithFile(file).
			WithDetailf("%s and %s both produce template %s", prev, file, name)
	}
	m.templates[name] = file
	return nil
}

// Add merges a rewritten route file into the module.
func (m *Module) Add(res *rewrite.Result) error {
	for _, imp := range res.Imports {
		if err := m.addImport(imp, res.File); err != nil {
			return err
		}
	}

	b := block{file: res.File}

	for _, d := range res.Support {
		for _, name := range d.Names {
			if err := m.declare(name, res.File, "E115"); err != nil {
				return err
			}
		}
		b.support = append(b.support, d.Source)
	}

	for _, ir := range res.Handlers {
		if err := m.declare(ir.Name, res.File, "E112"); err != nil {
			return err
		}

		key := ir.Method + " " + res.Descriptor.Pattern
		if prev, ok := m.routes[key]; ok {
			return errors.New("E112").
				WithFile(res.File).
				WithDetailf("%s and %s both register %s", prev, res.File, key)
		}
		m.routes[key] = res.File

		src, err := ir.Source()
		if err != nil {
			return err
		}
		b.handlers = append(b.handlers, src+"\n\n"+registration(ir, res.Descriptor.Pattern))
		m.table = append(m.table, Route{
			Method:  ir.Method,
			Pattern: res.Descriptor.Pattern,
			Name:    ir.Name,
			File:    res.File,
		})
	}

	m.blocks = append(m.blocks, b)
	return nil
}

func (m *Module) addImport(imp handler.Import, file string) error {
	binding := imp.Binding()
	if binding != "" {
		if want, ok := reservedBindings[binding]; ok && want != imp.Path {
			return errors.New("E114").
				WithFile(file).
				WithDetailf("import %s binds %q, which the generated module reserves for %q", imp, binding, want)
		}
		if prev, ok := m.bindings[binding]; ok && prev != imp.Path {
			return errors.New("E114").
				WithFile(file).
				WithDetailf("%s imports %q as %s but %s imports %q", m.boundBy[binding], prev, binding, file, imp.Path)
		}
		if prev, ok := m.decls[binding]; ok {
			return errors.New("E114").
				WithFile(file).
				WithDetailf("import name %s clashes with a declaration in %s", binding, prev)
		}
		if _, ok := m.bindings[binding]; !ok {
			m.bindings[binding] = imp.Path
			m.boundBy[binding] = file
		}
	}
	if _, reserved := reservedBindings[binding]; reserved {
		if binding == "http" {
			m.usesHTTP = true
		}
		return nil
	}
	m.imports[imp.String()] = imp
	return nil
}

func (m *Module) declare(name, file, code string) error {
	if reservedDecls[name] {
		return errors.New("E115").
			WithFile(file).
			WithDetailf("%s is reserved by the generated module", name)
	}
	if prev, ok := m.decls[name]; ok {
		return errors.New(code).
			WithFile(file).
			WithDetailf("%s is declared by both %s and %s", name, prev, file)
	}
	if prev, ok := m.boundBy[name]; ok {
		return errors.New("E114").
			WithFile(file).
			WithDetailf("%s clashes with an import name used in %s", name, prev)
	}
	m.decls[name] = file
	return nil
}

// Routes returns the registered routes in registration order.
func (m *Module) Routes() []Route {
	return append([]Route(nil), m.table...)
}

// Bytes renders the module and formats it with gofumpt.
func (m *Module) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("package " + PackageName + "\n\n")

	std, other := m.importGroups()
	buf.WriteString("import (\n")
	for _, imp := range std {
		buf.WriteString("\t" + imp + "\n")
	}
	buf.WriteString("\n")
	for _, imp := range other {
		buf.WriteString("\t" + imp + "\n")
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(&buf, "var bp = blueprint.New(%s)\n\n", strconv.Quote(m.name))
	buf.WriteString("// Blueprint returns the blueprint holding every generated route.\n")
	buf.WriteString("func Blueprint() *blueprint.Blueprint { return bp }\n")

	for _, b := range m.blocks {
		if len(b.support) == 0 && len(b.handlers) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n// %s\n", b.file)
		for _, s := range b.support {
			buf.WriteString("\n" + s + "\n")
		}
		for _, h := range b.handlers {
			buf.WriteString("\n" + h + "\n")
		}
	}

	// gofumpt leaves files marked as generated alone, so the marker is
	// added after formatting.
	out, err := format.Source(buf.Bytes(), format.Options{LangVersion: "go1.24"})
	if err != nil {
		return nil, errors.New("E100").
			WithDetail("generated module does not parse: " + err.Error()).
			WithSuggestion("Check the handler code of the route files listed in the module")
	}
	return append([]byte(generatedHeader), out...), nil
}

func (m *Module) importGroups() (std, other []string) {
	if len(m.table) > 0 || m.usesHTTP {
		std = append(std, strconv.Quote("net/http"))
	}
	other = append(other, strconv.Quote(RuntimeImport))

	imps := make([]handler.Import, 0, len(m.imports))
	for _, imp := range m.imports {
		imps = append(imps, imp)
	}
	sort.Slice(imps, func(i, j int) bool {
		if imps[i].Path != imps[j].Path {
			return imps[i].Path < imps[j].Path
		}
		return imps[i].Name < imps[j].Name
	})

	for _, imp := range imps {
		if isStd(imp.Path) {
			std = append(std, imp.String())
		} else {
			other = append(other, imp.String())
		}
	}
	return std, other
}

func isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// registration renders the statement registering ir on bp.
func registration(ir *handler.IR, pattern string) string {
	var args []string
	for _, p := range ir.Params {
		switch {
		case p.Source == handler.FromRequest:
			args = append(args, "r")
		case p.Source == handler.FromPath:
			args = append(args, "blueprint.Param(r, "+strconv.Quote(p.Name)+")")
		case p.Variadic:
		default:
			args = append(args, bindDeclared(p.Type))
		}
	}
	call := ir.Name + "(" + strings.Join(args, ", ") + ")"

	var body string
	if ir.ResultCount() == 0 {
		body = "\t" + call + "\n\treturn blueprint.Reply()\n"
	} else {
		body = "\treturn blueprint.Reply(" + call + ")\n"
	}

	return fmt.Sprintf("var _ = bp.Route(%s, %s, %s, func(w http.ResponseWriter, r *http.Request) blueprint.Response {\n%s})",
		strconv.Quote(ir.Method), strconv.Quote(pattern), strconv.Quote(ir.Name), body)
}

// bindDeclared returns the argument passed for a declared parameter of the
// given type.
func bindDeclared(typ string) string {
	switch typ {
	case "http.ResponseWriter":
		return "w"
	case "*http.Request":
		return "r"
	case "context.Context":
		return "r.Context()"
	default:
		return "*new(" + typ + ")"
	}
}
