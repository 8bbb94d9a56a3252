package build

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/mod/modfile"

	"github.com/vango-dev/routekit/internal/config"
	"github.com/vango-dev/routekit/internal/emit"
	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/routes"
)

// Output-relative locations of the generated tree.
const (
	AppDir        = "app"
	BlueprintsDir = "app/blueprints"
	StaticDir     = "app/static"
	TemplatesDir  = "templates"
	ModuleFile    = "app/blueprints/app.go"
)

var skeletonDirs = []string{
	AppDir,
	BlueprintsDir,
	"app/middleware",
	"app/lib",
	StaticDir,
	TemplatesDir,
}

const blueprintsDoc = `// Code generated by routekit. DO NOT EDIT.

// Package blueprints holds the generated route module.
package blueprints
`

var bootstrap = template.Must(template.New("server.go").Parse(`// Code generated by routekit. DO NOT EDIT.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"{{.Runtime}}"

	"{{.Blueprints}}"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := blueprint.Serve(ctx, blueprint.ConfigFromEnv(), blueprints.Blueprint()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
`))

// preflight holds what a pass needs before it touches the output.
type preflight struct {
	blueprintsImport string
}

func (b *Builder) preflight() (*preflight, error) {
	cfg := b.config

	if _, err := os.Stat(cfg.RootTemplatePath()); err != nil {
		return nil, errors.New("E160").
			WithDetail("Expected the root document at " + cfg.RootTemplatePath()).
			WithSuggestion("Create it with a {{slot}} where pages go, or set paths.root_template")
	}
	if info, err := os.Stat(cfg.StaticPath()); err != nil || !info.IsDir() {
		return nil, errors.New("E162").
			WithDetail("Expected a directory at " + cfg.StaticPath()).
			WithSuggestion("Create it (it may be empty) or set paths.static")
	}

	imp, err := BlueprintsImport(cfg)
	if err != nil {
		return nil, err
	}
	return &preflight{blueprintsImport: imp}, nil
}

// BlueprintsImport returns the import path of the generated blueprints
// package: the enclosing module's path joined with the output location.
func BlueprintsImport(cfg *config.Config) (string, error) {
	modDir, modPath, err := findModule(cfg.Dir())
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(modDir, cfg.OutputPath())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("E164").
			WithDetail("The output directory " + cfg.OutputPath() + " is outside the module rooted at " + modDir)
	}
	return path.Join(modPath, filepath.ToSlash(rel), BlueprintsDir), nil
}

// findModule walks up from dir to the nearest go.mod.
func findModule(dir string) (string, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", errors.New("E164").Wrap(err)
	}
	for {
		gomod := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(gomod)
		if err == nil {
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", "", errors.New("E164").WithFile(gomod)
			}
			return dir, modPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", errors.New("E164").
				WithSuggestion("Run 'go mod init' in the project directory")
		}
		dir = parent
	}
}

func ensureDirs(out string) error {
	for _, d := range skeletonDirs {
		p := filepath.Join(out, filepath.FromSlash(d))
		if err := os.MkdirAll(p, 0755); err != nil {
			return errors.New("E163").WithDetail("Could not create " + p).Wrap(err)
		}
	}
	return nil
}

func addSkeleton(files *Files, blueprintsImport string) error {
	var buf bytes.Buffer
	err := bootstrap.Execute(&buf, struct{ Runtime, Blueprints string }{
		Runtime:    emit.RuntimeImport,
		Blueprints: blueprintsImport,
	})
	if err != nil {
		return err
	}
	files.Add(AppDir+"/server.go", buf.Bytes())
	files.Add(BlueprintsDir+"/doc.go", []byte(blueprintsDoc))
	return nil
}

// addAssets adds the root template and the static tree.
func addAssets(files *Files, cfg *config.Config) error {
	root, err := os.ReadFile(cfg.RootTemplatePath())
	if err != nil {
		return errors.New("E160").Wrap(err)
	}
	files.Add(TemplatesDir+"/"+routes.RootTemplate, root)

	staticRoot := cfg.StaticPath()
	return filepath.WalkDir(staticRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.New("E162").WithFile(p).Wrap(err)
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.New("E162").WithFile(p).Wrap(err)
		}
		rel, _ := filepath.Rel(staticRoot, p)
		files.Add(StaticDir+"/"+filepath.ToSlash(rel), data)
		return nil
	})
}
