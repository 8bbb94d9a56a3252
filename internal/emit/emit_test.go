package emit

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/rewrite"
	"github.com/vango-dev/routekit/internal/routes"
)

func page(t *testing.T, file, src string, desc routes.Descriptor, tpl string) *rewrite.Result {
	t.Helper()
	res, err := rewrite.Page(file, []byte(src), desc, tpl)
	require.NoError(t, err)
	return res
}

func endpoint(t *testing.T, file, src string, desc routes.Descriptor) *rewrite.Result {
	t.Helper()
	res, err := rewrite.Endpoint(file, []byte(src), desc)
	require.NoError(t, err)
	return res
}

var usersID = routes.Descriptor{
	Pattern:    "/users/<id>",
	Identifier: "users_id",
	Params:     []routes.Param{{Name: "id", Position: 0}},
}

func buildModule(t *testing.T) []byte {
	t.Helper()
	m := NewModule("app")
	require.NoError(t, m.Add(page(t, "src/routes/+page.html", "<h1>home</h1>", routes.Descriptor{Pattern: "/"}, "+page.html")))
	require.NoError(t, m.Add(page(t, "src/routes/users/[id]/+page.html", `<p>{{ .Name }}</p>
<handler>
import (
	"context"
	"strings"
)

type user struct{ Name string }

func load(ctx context.Context) user {
	return user{Name: strings.ToUpper("ada")}
}
</handler>`, usersID, "users_id_+page.html")))
	require.NoError(t, m.Add(endpoint(t, "src/routes/api/+server.go", `package api

import "encoding/json"

func get() (any, error) {
	return json.RawMessage("{}"), nil
}

func post(w http.ResponseWriter, tags ...string) {}
`, routes.Descriptor{Pattern: "/api", Identifier: "api"})))

	out, err := m.Bytes()
	require.NoError(t, err)
	return out
}

func TestModule_Bytes(t *testing.T) {
	out := string(buildModule(t))

	_, err := parser.ParseFile(token.NewFileSet(), "app.go", out, 0)
	require.NoError(t, err, out)

	assert.True(t, strings.HasPrefix(out, "// Code generated by routekit. DO NOT EDIT.\n\npackage blueprints\n"))
	assert.Contains(t, out, `var bp = blueprint.New("app")`)
	assert.Contains(t, out, `"net/http"`)
	assert.Contains(t, out, `"github.com/vango-dev/routekit/pkg/blueprint"`)
	assert.Equal(t, 1, strings.Count(out, `"strings"`))

	assert.Contains(t, out, `var _ = bp.Route("GET", "/", "index", func(w http.ResponseWriter, r *http.Request) blueprint.Response {
	return blueprint.Reply(index(r))
})`)
	assert.Contains(t, out, `var _ = bp.Route("GET", "/users/<id>", "users_id", func(w http.ResponseWriter, r *http.Request) blueprint.Response {
	return blueprint.Reply(users_id(r, r.Context(), blueprint.Param(r, "id")))
})`)
	assert.Contains(t, out, `return blueprint.Reply(api_get(r))`)
	assert.Contains(t, out, `var _ = bp.Route("POST", "/api", "api_post", func(w http.ResponseWriter, r *http.Request) blueprint.Response {
	api_post(r, w)
	return blueprint.Reply()
})`)
	assert.Contains(t, out, "type user struct{ Name string }")

	// Imports are grouped: standard library first.
	stdIdx := strings.Index(out, `"encoding/json"`)
	rtIdx := strings.Index(out, `"github.com/vango-dev/routekit/pkg/blueprint"`)
	assert.Less(t, stdIdx, rtIdx)
}

func TestModule_Deterministic(t *testing.T) {
	assert.Equal(t, buildModule(t), buildModule(t))
}

func TestModule_EmptyHasNoHTTPImport(t *testing.T) {
	out, err := NewModule("app").Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"net/http"`)
	_, err = parser.ParseFile(token.NewFileSet(), "app.go", out, 0)
	require.NoError(t, err)
}

func TestModule_Collisions(t *testing.T) {
	t.Run("handler name", func(t *testing.T) {
		m := NewModule("app")
		require.NoError(t, m.Add(page(t, "a_b/+page.html", "", routes.Descriptor{Pattern: "/a_b", Identifier: "a_b"}, "a_b_+page.html")))
		err := m.Add(page(t, "a.b/+page.html", "", routes.Descriptor{Pattern: "/a/b", Identifier: "a_b"}, "a.b_+page.html"))
		assert.True(t, errors.Is(err, "E112"), "got %v", err)
		assert.Contains(t, err.Error(), "a_b/+page.html")
	})

	t.Run("route", func(t *testing.T) {
		m := NewModule("app")
		src := "func get() {}\nfunc Get() {}\n"
		err := m.Add(endpoint(t, "+server.go", src, routes.Descriptor{Pattern: "/"}))
		assert.True(t, errors.Is(err, "E112"), "got %v", err)
	})

	t.Run("template", func(t *testing.T) {
		m := NewModule("app")
		require.NoError(t, m.AddTemplate("index.html", "src/index.html"))
		assert.True(t, errors.Is(m.AddTemplate("index.html", "x"), "E113"))
	})

	t.Run("support declaration", func(t *testing.T) {
		m := NewModule("app")
		src := "<handler>\nfunc load() {}\nfunc helper() {}\n</handler>"
		require.NoError(t, m.Add(page(t, "a/+page.html", src, routes.Descriptor{Pattern: "/a", Identifier: "a"}, "a.html")))
		err := m.Add(page(t, "b/+page.html", src, routes.Descriptor{Pattern: "/b", Identifier: "b"}, "b.html"))
		assert.True(t, errors.Is(err, "E115"), "got %v", err)
	})

	t.Run("import name", func(t *testing.T) {
		m := NewModule("app")
		a := "<handler>\nimport \"math/rand\"\nfunc load() int { return rand.Int() }\n</handler>"
		b := "<handler>\nimport \"crypto/rand\"\nfunc load() {}\n</handler>"
		require.NoError(t, m.Add(page(t, "a/+page.html", a, routes.Descriptor{Pattern: "/a", Identifier: "a"}, "a.html")))
		err := m.Add(page(t, "b/+page.html", b, routes.Descriptor{Pattern: "/b", Identifier: "b"}, "b.html"))
		assert.True(t, errors.Is(err, "E114"), "got %v", err)
	})

	t.Run("reserved import name", func(t *testing.T) {
		m := NewModule("app")
		src := "<handler>\nimport http \"github.com/x/http\"\nfunc load() {}\n</handler>"
		err := m.Add(page(t, "a/+page.html", src, routes.Descriptor{Pattern: "/a", Identifier: "a"}, "a.html"))
		assert.True(t, errors.Is(err, "E114"), "got %v", err)
	})
}

func TestModule_Routes(t *testing.T) {
	m := NewModule("app")
	require.NoError(t, m.Add(endpoint(t, "users/+server.go", "func get() {}\nfunc delete() {}\n",
		routes.Descriptor{Pattern: "/users", Identifier: "users"})))

	assert.Equal(t, []Route{
		{Method: "GET", Pattern: "/users", Name: "users_get", File: "users/+server.go"},
		{Method: "DELETE", Pattern: "/users", Name: "users_delete", File: "users/+server.go"},
	}, m.Routes())
}

func TestTemplate(t *testing.T) {
	out := Template("admin_+layout.html", "<p>hi</p>\n")
	assert.Equal(t, "{{/* extends \"admin_+layout.html\" */}}\n<p>hi</p>\n", string(out))

	parent, ok := Parent(out)
	require.True(t, ok)
	assert.Equal(t, "admin_+layout.html", parent)

	_, ok = Parent([]byte("<p>root</p>"))
	assert.False(t, ok)
}

func TestBindDeclared(t *testing.T) {
	assert.Equal(t, "w", bindDeclared("http.ResponseWriter"))
	assert.Equal(t, "r", bindDeclared("*http.Request"))
	assert.Equal(t, "r.Context()", bindDeclared("context.Context"))
	assert.Equal(t, "*new(int)", bindDeclared("int"))
}
