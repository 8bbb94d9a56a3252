package routes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routekit/internal/errors"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<p>"+f+"</p>\n"), 0644))
	}
}

func TestNearestLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "routes")
	writeTree(t, root,
		"+layout.html",
		"admin/+layout.html",
		"admin/users/+page.html",
		"blog/[slug]/+page.html",
	)

	got, ok := NearestLayout(root, filepath.Join(root, "admin", "users", "+page.html"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "admin", "+layout.html"), got)

	got, ok = NearestLayout(root, filepath.Join(root, "blog", "[slug]", "+page.html"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "+layout.html"), got)
}

func TestNearestLayout_StopsAtRoot(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, "+layout.html", "routes/docs/+page.html")
	root := filepath.Join(base, "routes")

	_, ok := NearestLayout(root, filepath.Join(root, "docs", "+page.html"))
	assert.False(t, ok, "layouts above the routes root must not be found")
}

func TestLayouts_MatchesDisk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "routes")
	writeTree(t, root,
		"+layout.html",
		"admin/+layout.html",
		"admin/users/[id]/+page.html",
		"shop/+page.html",
		"shop/cart/+server.go",
	)

	entries, err := Scan(root)
	require.NoError(t, err)
	index := IndexLayouts(entries)

	for _, e := range entries {
		if e.Kind != KindPage {
			continue
		}
		disk, okDisk := NearestLayout(root, e.Path)
		mem, okMem := index.Nearest(root, e.Path)
		assert.Equal(t, okDisk, okMem, e.Rel)
		assert.Equal(t, disk, mem, e.Rel)
	}
}

func TestScan(t *testing.T) {
	root := filepath.Join(t.TempDir(), "routes")
	writeTree(t, root,
		"b/+page.html",
		"a/+server.go",
		"+layout.html",
		"notes.txt",
		".cache/+page.html",
	)

	entries, err := Scan(root)
	require.NoError(t, err)

	var rels []string
	kinds := map[string]Kind{}
	for _, e := range entries {
		rels = append(rels, e.Rel)
		kinds[e.Rel] = e.Kind
	}
	assert.Equal(t, []string{"+layout.html", "a/+server.go", "b/+page.html", "notes.txt"}, rels)
	assert.Equal(t, KindLayout, kinds["+layout.html"])
	assert.Equal(t, KindEndpoint, kinds["a/+server.go"])
	assert.Equal(t, KindPage, kinds["b/+page.html"])
	assert.Equal(t, KindOther, kinds["notes.txt"])

	_, err = Scan(filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, "E161"))
}
