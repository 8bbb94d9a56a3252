package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/routes"
)

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func source(t *testing.T, res *Result, i int) string {
	t.Helper()
	src, err := res.Handlers[i].Source()
	require.NoError(t, err)
	return normalize(src)
}

var usersID = routes.Descriptor{
	Pattern:    "/users/<id>",
	Identifier: "users_id",
	Params:     []routes.Param{{Name: "id", Position: 0}},
}

func TestPage_ReturnCarriesContext(t *testing.T) {
	src := `<h1>{{ .x }}</h1>
<handler>
func load() map[string]any {
	return map[string]any{"x": 1}
}
</handler>
`
	res, err := Page("users/[id]/+page.html", []byte(src), usersID, "users_id_+page.html")
	require.NoError(t, err)
	require.Len(t, res.Handlers, 1)

	ir := res.Handlers[0]
	assert.Equal(t, "users_id", ir.Name)
	assert.Equal(t, "GET", ir.Method)

	out := source(t, res, 0)
	assert.Contains(t, out, "func users_id(r *http.Request, id string) blueprint.Response {")
	assert.Contains(t, out, `return blueprint.Render("users_id_+page.html", map[string]any{"x": 1})`)
	assert.Equal(t, 1, strings.Count(out, "return "), "no trailing return after a final return")

	assert.NotContains(t, res.Markup, "handler")
	assert.Contains(t, res.Markup, "{{ .x }}")
}

func TestPage_BareReturnHasNoContext(t *testing.T) {
	src := "<p>hi</p>\n<handler>\nfunc load() {\n\treturn\n}\n</handler>\n"
	res, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.NoError(t, err)

	out := source(t, res, 0)
	assert.Contains(t, out, "func index(r *http.Request) blueprint.Response {")
	assert.Contains(t, out, `return blueprint.Render("+page.html") }`)
}

func TestPage_AppendsFinalReturn(t *testing.T) {
	src := `<handler>
func load(ctx context.Context) {
	if ctx == nil {
		return
	}
	_ = ctx
}
</handler>`
	res, err := Page("a/+page.html", []byte(src), routes.Descriptor{Pattern: "/a", Identifier: "a"}, "a_+page.html")
	require.NoError(t, err)

	out := source(t, res, 0)
	assert.Equal(t, 2, strings.Count(out, `return blueprint.Render("a_+page.html")`))
	assert.True(t, strings.HasSuffix(out, `_ = ctx return blueprint.Render("a_+page.html") }`), out)
}

func TestPage_NamedResultsForwarded(t *testing.T) {
	src := "<handler>\nfunc load() (user string, err error) {\n\tuser = \"ada\"\n\treturn\n}\n</handler>"
	res, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.NoError(t, err)

	out := source(t, res, 0)
	assert.Contains(t, out, "var user string")
	assert.Contains(t, out, "var err error")
	assert.Contains(t, out, `return blueprint.Render("+page.html", user, err)`)
}

func TestPage_MultiValueCallForwarded(t *testing.T) {
	src := `<handler>
func load() (map[string]any, error) {
	if id == "" {
		return nil, nil
	}
	return fetch(id)
}

func fetch(id string) (map[string]any, error) {
	return map[string]any{"id": id}, nil
}
</handler>`
	res, err := Page("users/[id]/+page.html", []byte(src), usersID, "users_id_+page.html")
	require.NoError(t, err)

	out := source(t, res, 0)
	assert.Contains(t, out, `return blueprint.RenderResults("users_id_+page.html")(fetch(id))`)
	assert.Contains(t, out, `return blueprint.Render("users_id_+page.html", nil, nil)`)
}

func TestPage_SingleValueCallStaysInline(t *testing.T) {
	src := "<handler>\nfunc load() map[string]any {\n\treturn view()\n}\n</handler>"
	res, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.NoError(t, err)

	assert.Contains(t, source(t, res, 0), `return blueprint.Render("+page.html", view())`)
}

func TestPage_NoHandlerBlock(t *testing.T) {
	res, err := Page("users/[id]/+page.html", []byte("<p>{{ .id }}</p>"), usersID, "users_id_+page.html")
	require.NoError(t, err)
	require.Len(t, res.Handlers, 1)

	ir := res.Handlers[0]
	assert.Empty(t, ir.Returns)
	out := source(t, res, 0)
	assert.Contains(t, out, `func users_id(r *http.Request, id string) blueprint.Response { return blueprint.Render("users_id_+page.html") }`)
	assert.Empty(t, res.Imports)
	assert.Empty(t, res.Support)
}

func TestPage_CarriesImportsAndSupport(t *testing.T) {
	src := `<handler>
import "strings"

type view struct{ Name string }

func Load() view {
	return view{Name: shout("x")}
}

//go:noinline
func shout(s string) string { return strings.ToUpper(s) }
</handler>`
	res, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.NoError(t, err)

	require.Len(t, res.Imports, 1)
	assert.Equal(t, "strings", res.Imports[0].Path)

	require.Len(t, res.Support, 2)
	assert.Equal(t, []string{"view"}, res.Support[0].Names)
	assert.Equal(t, []string{"shout"}, res.Support[1].Names)
	assert.NotContains(t, res.Support[1].Source, "go:noinline")
	assert.Contains(t, source(t, res, 0), `return blueprint.Render("+page.html", view{Name: shout("x")})`)
}

func TestPage_MissingLoader(t *testing.T) {
	src := "<handler>\nfunc fetch() {}\n</handler>"
	_, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "E101"))
	assert.Contains(t, err.Error(), "fetch")

	_, err = Page("+page.html", []byte("<handler>\ntype t int\n</handler>"), routes.Descriptor{Pattern: "/"}, "+page.html")
	assert.True(t, errors.Is(err, "E101"))
}

func TestPage_ParseError(t *testing.T) {
	src := "<h1>x</h1>\n<handler>\nfunc load() {\n\treturn 1 +\n}\n</handler>"
	_, err := Page("+page.html", []byte(src), routes.Descriptor{Pattern: "/"}, "+page.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "E100"))
	assert.Contains(t, err.Error(), "+page.html:")
}

func TestEndpoint_MethodFanOut(t *testing.T) {
	src := `//go:build ignore

package api

import "net/http"

func get() string {
	return "list"
}

func post(w http.ResponseWriter) (int, error) {
	return http.StatusCreated, nil
}
`
	desc := routes.Descriptor{Pattern: "/api/users", Identifier: "api_users"}
	res, err := Endpoint("api/users/+server.go", []byte(src), desc)
	require.NoError(t, err)
	require.Len(t, res.Handlers, 2)

	get, post := res.Handlers[0], res.Handlers[1]
	assert.Equal(t, "api_users_get", get.Name)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "api_users_post", post.Name)
	assert.Equal(t, "POST", post.Method)

	assert.Contains(t, source(t, res, 0), `func api_users_get(r *http.Request) string { return "list" }`)
	assert.Contains(t, source(t, res, 1), "func api_users_post(r *http.Request, w http.ResponseWriter) (int, error) { return http.StatusCreated, nil }")
	assert.Equal(t, "net/http", res.Imports[0].Path)
}

func TestEndpoint_RootAndParams(t *testing.T) {
	src := "func delete(ctx context.Context) {}\nfunc Patch() {}\n"
	res, err := Endpoint("+server.go", []byte(src), routes.Descriptor{Pattern: "/"})
	require.NoError(t, err)
	assert.Equal(t, "delete_", res.Handlers[0].Name)
	assert.Equal(t, "DELETE", res.Handlers[0].Method)
	assert.Equal(t, "Patch", res.Handlers[1].Name)
	assert.Equal(t, "PATCH", res.Handlers[1].Method)

	res, err = Endpoint("[id]/+server.go", []byte("func get() {}"), routes.Descriptor{
		Pattern: "/<id>", Identifier: "id", Params: []routes.Param{{Name: "id"}},
	})
	require.NoError(t, err)
	assert.Contains(t, source(t, res, 0), "func id_get(r *http.Request, id string)")
}

func TestLayout(t *testing.T) {
	body, had, err := Layout("+layout.html", []byte("<main>{{ slot }}</main><handler>func load() {}</handler>"))
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "<main>\n  {{ slot }}\n</main>\n", body)

	_, had, err = Layout("+layout.html", []byte("<main></main>"))
	require.NoError(t, err)
	assert.False(t, had)
}
