package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "structural error",
			code:    "E100",
			wantMsg: "Handler code failed to parse",
			wantCat: CategoryStructural,
		},
		{
			name:    "resolution error",
			code:    "E112",
			wantMsg: "Handler name collision",
			wantCat: CategoryResolution,
		},
		{
			name:    "invocation error",
			code:    "E140",
			wantMsg: "Path already exists",
			wantCat: CategoryInvocation,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E110").WithDetail(`duplicate parameter "id"`).WithFile("src/routes/[id]/[id]/+page.html")
	got := err.Error()
	want := `src/routes/[id]/[id]/+page.html: E110: Invalid path parameter: duplicate parameter "id"`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &Error{Message: "test error"}
	if bare.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "test error")
	}

	wrapped := New("E163").Wrap(stderrors.New("disk full"))
	if got := wrapped.Error(); got != "E163: Output write failed: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := New("E163").Wrap(inner)
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find wrapped error")
	}
}

func TestIs(t *testing.T) {
	err := New("E112")
	if !Is(err, "E112") {
		t.Error("Is should match code")
	}
	if Is(err, "E113") {
		t.Error("Is should not match other code")
	}
	if Is(stderrors.New("plain"), "E112") {
		t.Error("Is should not match plain errors")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E163") != nil {
		t.Error("FromError(nil) should be nil")
	}

	ke := New("E100")
	if FromError(ke, "E163") != ke {
		t.Error("FromError should pass through *Error")
	}

	got := FromError(stderrors.New("boom"), "E163")
	if got.Code != "E163" {
		t.Errorf("Code = %q, want E163", got.Code)
	}
}

func TestWithLocation_ReadsContext(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "+page.html")
	content := "<h1>hi</h1>\n<handler>\nfunc load() {\n\treturn 1 +\n}\n</handler>\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E100").WithLocation(file, 4, 2)
	if len(err.Context) == 0 {
		t.Fatal("expected context lines")
	}

	DisableColors()
	defer EnableColors()

	out := err.Format()
	if !strings.Contains(out, "E100") {
		t.Error("Format should include code")
	}
	if !strings.Contains(out, "return 1 +") {
		t.Error("Format should include the offending line")
	}
	if !strings.Contains(out, "^") {
		t.Error("Format should include the column marker")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E101").WithLocation("page.html", 3, 0)
	if got := err.FormatCompact(); got != "page.html:3: E101: Missing loader function" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, line := range lines {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestRegistryCategories(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("%s: empty category or message", code)
		}
	}
}
