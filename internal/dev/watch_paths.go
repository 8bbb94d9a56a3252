package dev

import (
	"path/filepath"
	"strings"

	"github.com/vango-dev/routekit/internal/config"
)

// CollectWatchPaths returns the project's watch paths plus the root
// template's directory, cleaned and deduplicated. Paths nested inside
// another watched path are dropped.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := append(cfg.WatchPaths(), filepath.Dir(cfg.RootTemplatePath()), cfg.RoutesPath())

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	result := make([]string, 0, len(unique))
	for _, p := range unique {
		nested := false
		for _, q := range unique {
			if p != q && isWithinDir(p, q) {
				nested = true
				break
			}
		}
		if !nested {
			result = append(result, p)
		}
	}
	return result
}

func isWithinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
