package main

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/routekit/internal/emit"
)

var testRoutes = []emit.Route{
	{Method: "GET", Pattern: "/", Name: "index", File: "+page.html"},
	{Method: "POST", Pattern: "/api/items/<id>", Name: "api_items_id_post", File: "api/items/[id]/+server.go"},
}

func TestPrintRoutes_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := printRoutes(&buf, testRoutes, "table"); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "METHOD") {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[2]); len(fields) != 4 || fields[1] != "/api/items/<id>" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestPrintRoutes_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := printRoutes(&buf, testRoutes, "yaml"); err != nil {
		t.Fatal(err)
	}

	var got []routeView
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Name != "api_items_id_post" {
		t.Errorf("got %+v", got)
	}
}

func TestPrintRoutes_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printRoutes(&buf, testRoutes[:1], "json"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"pattern": "/"`) {
		t.Errorf("json = %s", buf.String())
	}
}

func TestPrintRoutes_UnknownFormat(t *testing.T) {
	if err := printRoutes(&bytes.Buffer{}, nil, "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRootCommands(t *testing.T) {
	want := map[string]bool{"new": false, "build": false, "run": false, "routes": false, "publish": false, "version": false}
	for _, c := range rootCmd().Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestModuleVersion(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = "v1.2.3"
	if got := moduleVersion(); got != "v1.2.3" {
		t.Errorf("moduleVersion() = %q", got)
	}
	version = "dev"
	if got := moduleVersion(); got != "latest" {
		t.Errorf("moduleVersion() = %q", got)
	}
}
