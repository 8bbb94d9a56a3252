package templates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/config"
	"github.com/vango-dev/routekit/internal/errors"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"default", false},
		{"minimal", false},
		{"api", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if !errors.Is(err, "E145") {
					t.Errorf("Get(%q) error = %v, want E145", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
			if tmpl.Description == "" {
				t.Error("Template should have a description")
			}
		})
	}
}

func TestList(t *testing.T) {
	got := strings.Join(List(), ",")
	if got != "api,default,minimal" {
		t.Errorf("List() = %s, want api,default,minimal", got)
	}
}

func TestTemplate_Create(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	tmpl, _ := Get("default")
	cfg := Config{
		ProjectName:     "site",
		ModulePath:      "example.com/site",
		Description:     "A test site",
		RoutekitVersion: "v0.1.0",
	}
	if err := tmpl.Create(dir, cfg); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	for _, file := range tmpl.Paths() {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			t.Errorf("File %q not created", file)
		}
	}

	goMod, _ := os.ReadFile(filepath.Join(dir, "go.mod"))
	if !strings.Contains(string(goMod), "module example.com/site") {
		t.Error("Module path not substituted in go.mod")
	}
	if !strings.Contains(string(goMod), "github.com/vango-dev/routekit v0.1.0") {
		t.Error("routekit version not substituted in go.mod")
	}

	page, _ := os.ReadFile(filepath.Join(dir, "src", "routes", "+page.html"))
	if !strings.Contains(string(page), "{{ .Title }}") {
		t.Error("Template actions in route markup should be kept")
	}
	if !strings.Contains(string(page), `"A test site"`) {
		t.Error("Description not substituted in +page.html")
	}

	loaded, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load error: %v", err)
	}
	if loaded.Name != "site" {
		t.Errorf("Name = %q, want site", loaded.Name)
	}
}

func TestTemplate_CreateExisting(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(marker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("minimal")
	err := tmpl.Create(dir, Config{ProjectName: "x", ModulePath: "x"})
	if !errors.Is(err, "E140") {
		t.Fatalf("Create error = %v, want E140", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Create touched an existing directory: %d entries", len(entries))
	}
}

func TestTemplate_CreateDefaultsVersion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")

	tmpl, _ := Get("minimal")
	if err := tmpl.Create(dir, Config{ProjectName: "app", ModulePath: "example.com/app"}); err != nil {
		t.Fatal(err)
	}

	goMod, _ := os.ReadFile(filepath.Join(dir, "go.mod"))
	if !strings.Contains(string(goMod), "routekit latest") {
		t.Errorf("go.mod = %s, want routekit latest", goMod)
	}
}

func TestTemplates_Build(t *testing.T) {
	want := map[string][]string{
		"default": {"/", "/api/health", "/hello/<name>"},
		"minimal": {"/"},
		"api":     {"/api/health", "/api/items/<id>"},
	}

	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), name)
			tmpl, _ := Get(name)
			if err := tmpl.Create(dir, Config{ProjectName: name, ModulePath: "example.com/" + name}); err != nil {
				t.Fatal(err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatal(err)
			}
			res, err := build.New(cfg, build.Options{}).Build(context.Background())
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}

			seen := map[string]bool{}
			for _, r := range res.Routes {
				seen[r.Pattern] = true
			}
			for _, pattern := range want[name] {
				if !seen[pattern] {
					t.Errorf("route %s missing from %v", pattern, res.Routes)
				}
			}
			if _, err := os.Stat(filepath.Join(cfg.OutputPath(), "app", "static", "css", "site.css")); err != nil {
				t.Error("static assets not copied")
			}
		})
	}
}
