package blueprint

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func write(t *testing.T, resp Response, env *Env) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := resp.Write(rec, httptest.NewRequest("GET", "/", nil), env); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return rec
}

type user struct {
	Name string `json:"name"`
}

func TestReply(t *testing.T) {
	tests := []struct {
		name        string
		results     []any
		code        int
		contentType string
		body        string
	}{
		{"none", nil, 204, "", ""},
		{"nil", []any{nil}, 204, "", ""},
		{"string", []any{"hi"}, 200, "text/plain; charset=utf-8", "hi"},
		{"bytes", []any{[]byte{1, 2}}, 200, "application/octet-stream", "\x01\x02"},
		{"struct", []any{user{"ada"}}, 200, "application/json", `{"name":"ada"}` + "\n"},
		{"value and nil error", []any{"ok", nil}, 200, "text/plain; charset=utf-8", "ok"},
		{"status and value", []any{201, user{"ada"}}, 201, "application/json", `{"name":"ada"}` + "\n"},
		{"response", []any{Text(418, "teapot")}, 418, "text/plain; charset=utf-8", "teapot"},
		{"several", []any{1, "a", true}, 200, "application/json", `[1,"a",true]` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := write(t, Reply(tt.results...), nil)
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Body.String(); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestReply_Errors(t *testing.T) {
	rec := write(t, Reply(nil, errors.New("boom")), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}

	rec = write(t, Reply(Errorf(http.StatusNotFound, "no user %d", 7)), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no user 7") {
		t.Errorf("body = %q, want the client error message", rec.Body.String())
	}
}

func TestRedirect(t *testing.T) {
	rec := write(t, Redirect("/login"), nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("code = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q", got)
	}
}

func TestRender_WithoutRenderer(t *testing.T) {
	rec := write(t, Render("x.html"), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}

func TestRender_TrailingError(t *testing.T) {
	rd := NewRenderer(t.TempDir())
	rec := write(t, Render("x.html", "data", Errorf(http.StatusForbidden, "denied")), &Env{Renderer: rd})
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rec.Code)
	}
}

func TestRenderResults(t *testing.T) {
	load := func() (map[string]string, error) {
		return nil, Errorf(http.StatusNotFound, "no such user")
	}
	rd := NewRenderer(t.TempDir())
	rec := write(t, RenderResults("x.html")(load()), &Env{Renderer: rd})
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}

	dir := t.TempDir()
	writeFile(t, dir, "x.html", "<p>{{.Name}}</p>")
	ok := func() (map[string]string, error) {
		return map[string]string{"Name": "ada"}, nil
	}
	rec = write(t, RenderResults("x.html")(ok()), &Env{Renderer: NewRenderer(dir)})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<p>ada</p>") {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}
