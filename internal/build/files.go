package build

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/vango-dev/routekit/internal/errors"
)

// Files is an in-memory output tree keyed by slash-separated paths
// relative to the output directory.
type Files struct {
	m map[string][]byte
}

// NewFiles returns an empty tree.
func NewFiles() *Files {
	return &Files{m: make(map[string][]byte)}
}

// Add sets the content of rel.
func (f *Files) Add(rel string, data []byte) {
	f.m[rel] = data
}

// Get returns the content of rel, or nil.
func (f *Files) Get(rel string) []byte {
	return f.m[rel]
}

// Has reports whether rel is in the tree.
func (f *Files) Has(rel string) bool {
	_, ok := f.m[rel]
	return ok
}

// Merge copies every file of o into f.
func (f *Files) Merge(o *Files) {
	for k, v := range o.m {
		f.m[k] = v
	}
}

// Paths returns the paths in lexical order.
func (f *Files) Paths() []string {
	paths := make([]string, 0, len(f.m))
	for k := range f.m {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// Manifest returns the digest of every file.
func (f *Files) Manifest() *Manifest {
	m := &Manifest{Version: ManifestVersion, Files: make(map[string]string, len(f.m))}
	for k, v := range f.m {
		m.Files[k] = Digest(v)
	}
	return m
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E163").WithDetail("Could not create " + dir).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.New("E163").WithDetail("Could not write " + path).Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.New("E163").WithDetail("Could not write " + path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.New("E163").WithDetail("Could not write " + path).Wrap(err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.New("E163").WithDetail("Could not write " + path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.New("E163").WithDetail("Could not write " + path).Wrap(err)
	}
	return nil
}
