package blueprint

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestHandler(t *testing.T, cfg Config, bps ...*Blueprint) http.Handler {
	t.Helper()
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = t.TempDir()
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = t.TempDir()
	}
	return NewHandler(cfg, bps...)
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestChiPattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/users/<id>", "/users/{id}"},
		{"/a/<x>/b/<y>", "/a/{x}/b/{y}"},
		{"/docs/", "/docs/"},
	}
	for _, tt := range tests {
		if got := ChiPattern(tt.in); got != tt.want {
			t.Errorf("ChiPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoute_PathParams(t *testing.T) {
	bp := New("app")
	bp.Route("GET", "/users/<id>/posts/<post>", "users_id_posts_post", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply(Param(r, "id") + "/" + Param(r, "post"))
	})

	rec := do(newTestHandler(t, Config{}, bp), "GET", "/users/42/posts/hello")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "42/hello" {
		t.Errorf("body = %q, want %q", got, "42/hello")
	}
}

func TestRoute_MethodFanOut(t *testing.T) {
	bp := New("app")
	bp.Route("GET", "/items", "items_get", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply("list")
	})
	bp.Route("POST", "/items", "items_post", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply(http.StatusCreated, "made")
	})
	h := newTestHandler(t, Config{}, bp)

	if rec := do(h, "GET", "/items"); rec.Body.String() != "list" {
		t.Errorf("GET body = %q", rec.Body.String())
	}
	rec := do(h, "POST", "/items")
	if rec.Code != http.StatusCreated || rec.Body.String() != "made" {
		t.Errorf("POST = %d %q, want 201 made", rec.Code, rec.Body.String())
	}
	if rec := do(h, "DELETE", "/items"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestRoute_CustomMethod(t *testing.T) {
	bp := New("app")
	bp.Route("PURGE", "/cache", "cache_purge", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply()
	})

	rec := do(newTestHandler(t, Config{}, bp), "PURGE", "/cache")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestRoute_DuplicatePanics(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) Response { return nil }

	t.Run("name", func(t *testing.T) {
		bp := New("app")
		bp.Route("GET", "/a", "a", h)
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		bp.Route("GET", "/b", "a", h)
	})

	t.Run("method and pattern", func(t *testing.T) {
		bp := New("app")
		bp.Route("GET", "/a", "a", h)
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		bp.Route("GET", "/a", "b", h)
	})
}

func TestRoutes_Order(t *testing.T) {
	bp := New("app")
	h := func(w http.ResponseWriter, r *http.Request) Response { return nil }
	bp.Route("GET", "/", "index", h)
	bp.Route("GET", "/about", "about", h)

	routes := bp.Routes()
	if len(routes) != 2 || routes[0].Name != "index" || routes[1].Name != "about" {
		t.Errorf("Routes() = %+v", routes)
	}
	if bp.Name() != "app" {
		t.Errorf("Name() = %q", bp.Name())
	}
}

func TestURLFor(t *testing.T) {
	bp := New("app")
	h := func(w http.ResponseWriter, r *http.Request) Response { return nil }
	bp.Route("GET", "/users/<id>", "users_id", h)

	got, err := bp.URLFor("users_id", "id", "a b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/users/a%20b" {
		t.Errorf("URLFor = %q", got)
	}

	if _, err := bp.URLFor("users_id"); err == nil {
		t.Error("expected error for missing parameter")
	}
	if _, err := bp.URLFor("nope"); err == nil {
		t.Error("expected error for unknown route")
	}
	if _, err := bp.URLFor("users_id", "id"); err == nil {
		t.Error("expected error for odd parameters")
	}
}

func TestURLFor_ConcurrentRoute(t *testing.T) {
	bp := New("app")
	h := func(w http.ResponseWriter, r *http.Request) Response { return nil }
	bp.Route("GET", "/users/<id>", "users_id", h)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			bp.Route("GET", fmt.Sprintf("/r%d", i), fmt.Sprintf("r%d", i), h)
		}
	}()
	for i := 0; i < 100; i++ {
		if got, err := bp.URLFor("users_id", "id", "7"); err != nil || got != "/users/7" {
			t.Fatalf("URLFor = %q, %v", got, err)
		}
	}
	wg.Wait()
}

func TestStaticFiles(t *testing.T) {
	static := t.TempDir()
	writeFile(t, static, "css/site.css", "body{}")

	rec := do(newTestHandler(t, Config{StaticDir: static}), "GET", "/static/css/site.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("static = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bp := New("app")
	bp.Route("GET", "/users/<id>", "users_id", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply("ok")
	})
	h := newTestHandler(t, Config{Registry: reg, MetricsPath: "/metrics"}, bp)

	do(h, "GET", "/users/1")
	do(h, "GET", "/users/2")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "routekit_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label(m, "route") == "/users/{id}" {
				total += m.GetCounter().GetValue()
			}
		}
	}
	if total != 2 {
		t.Errorf("requests_total for /users/{id} = %v, want 2", total)
	}

	rec := do(h, "GET", "/metrics")
	if !strings.Contains(rec.Body.String(), "routekit_request_duration_seconds") {
		t.Error("metrics endpoint does not expose request duration")
	}
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestError_NotLeaked(t *testing.T) {
	bp := New("app")
	bp.Route("GET", "/boom", "boom", func(w http.ResponseWriter, r *http.Request) Response {
		return Reply("ignored", errors.New("db password wrong"))
	})

	rec := do(newTestHandler(t, Config{}, bp), "GET", "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("error detail leaked: %q", rec.Body.String())
	}
}
