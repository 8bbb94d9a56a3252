package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vango-dev/routekit/internal/emit"
	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/rewrite"
	"github.com/vango-dev/routekit/internal/routes"
)

// walk compiles every route file into files and returns the route table.
// Nothing is written; any error aborts the walk.
func (b *Builder) walk(ctx context.Context, files *Files, logger *slog.Logger) ([]emit.Route, error) {
	root := b.config.RoutesPath()
	entries, err := routes.Scan(root)
	if err != nil {
		return nil, err
	}
	layouts := routes.IndexLayouts(entries)

	mod := emit.NewModule(b.config.Name)
	if err := mod.AddTemplate(routes.RootTemplate, b.display(b.config.RootTemplatePath())); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := b.display(e.Path)

		switch e.Kind {
		case routes.KindPage:
			err = b.page(e, file, layouts, mod, files)
		case routes.KindEndpoint:
			err = b.endpoint(e, file, mod)
		case routes.KindLayout:
			err = b.layout(e, file, mod, files, logger)
		default:
			logger.Debug("skipping file", "file", file)
		}
		if err != nil {
			return nil, err
		}
	}

	src, err := mod.Bytes()
	if err != nil {
		return nil, err
	}
	files.Add(ModuleFile, src)
	return mod.Routes(), nil
}

func (b *Builder) page(e routes.Entry, file string, layouts routes.Layouts, mod *emit.Module, files *Files) error {
	root := b.config.RoutesPath()
	desc, err := routes.Resolve(root, e.Path)
	if err != nil {
		return withFile(err, file)
	}
	src, err := readRoute(e.Path, file)
	if err != nil {
		return err
	}

	name := routes.TemplateName(root, e.Path)
	res, err := rewrite.Page(file, src, desc, name)
	if err != nil {
		return err
	}
	if err := mod.AddTemplate(name, file); err != nil {
		return err
	}
	if err := mod.Add(res); err != nil {
		return err
	}

	parent := routes.RootTemplate
	if layout, ok := layouts.Nearest(root, e.Path); ok {
		parent = routes.TemplateName(root, layout)
	}
	files.Add(TemplatesDir+"/"+name, emit.Template(parent, res.Markup))
	return nil
}

func (b *Builder) endpoint(e routes.Entry, file string, mod *emit.Module) error {
	desc, err := routes.Resolve(b.config.RoutesPath(), e.Path)
	if err != nil {
		return withFile(err, file)
	}
	src, err := readRoute(e.Path, file)
	if err != nil {
		return err
	}
	res, err := rewrite.Endpoint(file, src, desc)
	if err != nil {
		return err
	}
	return mod.Add(res)
}

func (b *Builder) layout(e routes.Entry, file string, mod *emit.Module, files *Files, logger *slog.Logger) error {
	src, err := readRoute(e.Path, file)
	if err != nil {
		return err
	}
	body, hadHandler, err := rewrite.Layout(file, src)
	if err != nil {
		return err
	}
	if hadHandler {
		logger.Warn("layouts cannot carry handler code; block dropped", "file", file)
	}

	name := routes.TemplateName(b.config.RoutesPath(), e.Path)
	if err := mod.AddTemplate(name, file); err != nil {
		return err
	}
	files.Add(TemplatesDir+"/"+name, emit.Template(routes.RootTemplate, body))
	return nil
}

// display returns path relative to the project directory when possible.
func (b *Builder) display(path string) string {
	if dir := b.config.Dir(); dir != "" {
		if rel, err := filepath.Rel(dir, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return path
}

func readRoute(path, file string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E165").WithFile(file).Wrap(err)
	}
	return src, nil
}

// withFile attaches file to a routekit error that has no location yet.
func withFile(err error, file string) error {
	if e, ok := err.(*errors.Error); ok && e.Location == nil {
		return e.WithFile(file)
	}
	return err
}
