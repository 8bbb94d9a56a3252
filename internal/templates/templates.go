package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vango-dev/routekit/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project. It also names the
	// generated blueprint.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string

	// Description is a short project description.
	Description string

	// RoutekitVersion is the routekit version the project requires.
	RoutekitVersion string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents. Contents use
	// [[ and ]] as delimiters so route markup keeps its {{ }} actions.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"default": defaultTemplate(),
	"minimal": minimalTemplate(),
	"api":     apiTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E145").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the template's file paths, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template in dir. dir must not
// exist; nothing is written when it does or when a file fails to render.
func (t *Template) Create(dir string, cfg Config) error {
	if _, err := os.Lstat(dir); err == nil {
		return errors.New("E140").
			WithDetail(dir + " already exists").
			WithSuggestion("Choose a new directory name")
	}
	if cfg.RoutekitVersion == "" {
		cfg.RoutekitVersion = "latest"
	}

	rendered := make(map[string][]byte, len(t.Files))
	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Delims("[[", "]]").Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryInvocation, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryInvocation, "template execute error %s: %v", relPath, err)
		}
		rendered[relPath] = buf.Bytes()
	}

	for _, relPath := range t.Paths() {
		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, rendered[relPath], 0644); err != nil {
			return err
		}
	}

	return nil
}

// Shared files.
const (
	configFile = `name = [[printf "%q" .ProjectName]]

[paths]
src = "src"
routes = "src/routes"
root_template = "src/index.html"
static = "static"

[build]
output = "build"

[dev]
port = 8000
reload_port = 8001

# [publish]
# bucket = "my-bucket"
# region = "us-east-1"
`

	goModFile = `module [[.ModulePath]]

go 1.24

require github.com/vango-dev/routekit [[.RoutekitVersion]]
`

	gitignoreFile = `/build/
`

	indexFile = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>[[.ProjectName]]</title>
  <link rel="stylesheet" href="/static/css/site.css">
</head>
<body>
  {{slot}}
</body>
</html>
`

	stylesheetFile = `body {
  font-family: system-ui, sans-serif;
  max-width: 48rem;
  margin: 0 auto;
  padding: 2rem;
}
`
)

func defaultTemplate() *Template {
	return &Template{
		Name:        "default",
		Description: "Pages, a layout and an API endpoint",
		Files: map[string]string{
			"routekit.toml":       configFile,
			"go.mod":              goModFile,
			".gitignore":          gitignoreFile,
			"src/index.html":      indexFile,
			"static/css/site.css": stylesheetFile,
			"src/routes/+layout.html": `<nav>
  <a href="/">Home</a>
  <a href="/hello/world">Hello</a>
</nav>
<main>
  {{slot}}
</main>
`,
			"src/routes/+page.html": `<h1>{{ .Title }}</h1>
<p>{{ .Description }}</p>

<handler>
func load() map[string]string {
	return map[string]string{
		"Title":       "[[.ProjectName]]",
		"Description": "[[.Description]]",
	}
}
</handler>
`,
			"src/routes/hello/[name]/+page.html": `<h1>Hello, {{ . }}!</h1>

<handler>
import "strings"

func load() string {
	return strings.ToUpper(name[:1]) + name[1:]
}
</handler>
`,
			"src/routes/api/health/+server.go": `//go:build ignore

package routes

func get() map[string]string {
	return map[string]string{"status": "ok"}
}
`,
		},
	}
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single page",
		Files: map[string]string{
			"routekit.toml":         configFile,
			"go.mod":                goModFile,
			".gitignore":            gitignoreFile,
			"src/index.html":        indexFile,
			"static/css/site.css":   stylesheetFile,
			"src/routes/+page.html": "<h1>[[.ProjectName]]</h1>\n",
		},
	}
}

func apiTemplate() *Template {
	return &Template{
		Name:        "api",
		Description: "JSON endpoints only",
		Files: map[string]string{
			"routekit.toml":       configFile,
			"go.mod":              goModFile,
			".gitignore":          gitignoreFile,
			"src/index.html":      indexFile,
			"static/css/site.css": stylesheetFile,
			"src/routes/api/health/+server.go": `//go:build ignore

package routes

func get() map[string]string {
	return map[string]string{"status": "ok"}
}
`,
			"src/routes/api/items/[id]/+server.go": `//go:build ignore

package routes

import (
	"net/http"
	"strconv"
)

func get() (map[string]any, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, blueprint.Errorf(http.StatusBadRequest, "invalid id %q", id)
	}
	return map[string]any{"id": n}, nil
}

func delete() blueprint.Response {
	return blueprint.Status(http.StatusNoContent)
}
`,
		},
	}
}
