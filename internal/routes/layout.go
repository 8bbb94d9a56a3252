package routes

import (
	"os"
	"path/filepath"
	"strings"
)

// NearestLayout returns the layout closest to page, searching page's
// directory and then each parent up to and including root. It reports
// false when no layout exists below root.
func NearestLayout(root, page string) (string, bool) {
	return walkUp(root, page, layoutOnDisk)
}

// Layouts indexes the layouts of a scan by directory.
type Layouts map[string]string

// IndexLayouts builds a Layouts index from scanned entries. When a
// directory holds several layout files the lexically first wins.
func IndexLayouts(entries []Entry) Layouts {
	l := make(Layouts)
	for _, e := range entries {
		if e.Kind != KindLayout {
			continue
		}
		if _, ok := l[e.Dir]; !ok {
			l[e.Dir] = e.Path
		}
	}
	return l
}

// Nearest is NearestLayout over the index instead of the filesystem.
func (l Layouts) Nearest(root, page string) (string, bool) {
	return walkUp(root, page, func(dir string) (string, bool) {
		p, ok := l[dir]
		return p, ok
	})
}

func walkUp(root, page string, find func(dir string) (string, bool)) (string, bool) {
	root = filepath.Clean(root)
	dir := filepath.Dir(filepath.Clean(page))

	for within(root, dir) {
		if layout, ok := find(dir); ok {
			return layout, true
		}
		if dir == root {
			break
		}
		dir = filepath.Dir(dir)
	}
	return "", false
}

func within(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func layoutOnDisk(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	// ReadDir sorts by name.
	for _, e := range entries {
		if !e.IsDir() && ClassifyFile(e.Name()) == KindLayout {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
