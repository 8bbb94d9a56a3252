package routes

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/routekit/internal/errors"
)

const (
	pagePrefix   = "+page."
	layoutPrefix = "+layout."
	serverFile   = "+server.go"
)

// ClassifyFile returns the kind of a route file from its base name.
func ClassifyFile(name string) Kind {
	switch {
	case name == serverFile:
		return KindEndpoint
	case strings.HasPrefix(name, pagePrefix) && len(name) > len(pagePrefix):
		return KindPage
	case strings.HasPrefix(name, layoutPrefix) && len(name) > len(layoutPrefix):
		return KindLayout
	default:
		return KindOther
	}
}

// Scan walks the routes root in lexical order and returns every file
// found, classified by kind. Hidden directories are skipped.
func Scan(root string) ([]Entry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.New("E161").
			WithFile(root).
			WithSuggestion("Create the routes directory or set paths.routes in routekit.toml")
	}

	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.New("E165").WithFile(path).Wrap(err)
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		entries = append(entries, Entry{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Dir:  filepath.Dir(path),
			Kind: ClassifyFile(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
