package build

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff is a difference between a computed output and the disk.
type Diff struct {
	// Path is relative to the output directory.
	Path string

	// Unified is the unified diff, or a one-line summary for binary files.
	Unified string
}

// diffTree compares files and the manifest against the output directory.
// Files listed in the previous manifest but no longer produced are
// reported as deletions.
func diffTree(out string, files *Files, old *Manifest, manifest []byte) ([]Diff, error) {
	want := NewFiles()
	want.Merge(files)
	want.Add(ManifestName, manifest)

	var diffs []Diff
	for _, rel := range want.Paths() {
		have, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		next := want.Get(rel)
		if err == nil && bytes.Equal(have, next) {
			continue
		}
		d, err := unified(rel, have, next)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, d)
	}

	var stale []string
	for rel := range old.Files {
		if !want.Has(rel) {
			stale = append(stale, rel)
		}
	}
	sort.Strings(stale)
	for _, rel := range stale {
		have, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		d, err := unified(rel, have, nil)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, d)
	}
	return diffs, nil
}

func unified(rel string, a, b []byte) (Diff, error) {
	if !utf8.Valid(a) || !utf8.Valid(b) {
		return Diff{Path: rel, Unified: "Binary files a/" + rel + " and b/" + rel + " differ\n"}, nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "a/" + rel,
		ToFile:   "b/" + rel,
		Context:  3,
	})
	if err != nil {
		return Diff{}, err
	}
	return Diff{Path: rel, Unified: text}, nil
}
