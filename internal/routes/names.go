package routes

import (
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"strings"
)

// RootTemplate is the template every layout inherits from, and every page
// without a layout.
const RootTemplate = "index.html"

// reservedNames are names of the generated module, including the closure
// parameters of each route registration.
var reservedNames = map[string]bool{
	"bp":        true,
	"blueprint": true,
	"http":      true,
	"Blueprint": true,
	"r":         true,
	"w":         true,
}

// TemplateName returns the template name of a route file: the directories
// relative to root and the file stem joined by "_", brackets stripped, with
// an .html suffix. users/[id]/+page.html becomes users_id_+page.html.
func TemplateName(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = filepath.ToSlash(rel)

	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	parts := []string{stem}
	if dir := path.Dir(rel); dir != "." {
		parts = append(strings.Split(dir, "/"), stem)
	}

	name := strings.Join(parts, "_")
	name = strings.NewReplacer("[", "", "]", "").Replace(name)
	return name + ".html"
}

// HandlerName returns the Go function name for a route handler. Pages pass
// an empty suffix; endpoints pass the function's own name. The root page is
// named "index". Names that would clash with Go keywords, predeclared
// identifiers or the generated module's own names get a trailing "_".
func HandlerName(identifier, suffix string) string {
	var name string
	switch {
	case suffix == "" && identifier == "":
		name = "index"
	case suffix == "":
		name = identifier
	case identifier == "":
		name = suffix
	default:
		name = identifier + "_" + suffix
	}
	return SafeName(name)
}

// SafeName appends "_" to names that cannot be declared at package level
// of the generated module.
func SafeName(name string) string {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil || reservedNames[name] {
		return name + "_"
	}
	return name
}
