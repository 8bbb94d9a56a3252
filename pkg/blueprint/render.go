package blueprint

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var extendsRe = regexp.MustCompile(`^\{\{/\* extends ("(?:[^"\\]|\\.)*") \*/\}\}`)

// Extends returns the directive naming a template's parent. It must be the
// first thing in the file.
func Extends(parent string) string {
	return "{{/* extends " + strconv.Quote(parent) + " */}}"
}

// Parent returns the parent named by src's extends directive.
func Parent(src []byte) (string, bool) {
	m := extendsRe.FindSubmatch(src)
	if m == nil {
		return "", false
	}
	parent, err := strconv.Unquote(string(m[1]))
	if err != nil {
		return "", false
	}
	return parent, true
}

// Renderer renders templates from a directory. A template naming a parent
// is rendered first and its output is available to the parent as {{slot}}.
type Renderer struct {
	dir       string
	funcs     template.FuncMap
	reloadURL string
	noCache   bool

	mu     sync.Mutex
	chains map[string][]*template.Template
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithFuncs adds template functions.
func WithFuncs(funcs template.FuncMap) RendererOption {
	return func(rd *Renderer) {
		for k, v := range funcs {
			rd.funcs[k] = v
		}
	}
}

// WithReloadScript injects a script connecting to url into rendered pages,
// reloading them when the server sends a message.
func WithReloadScript(url string) RendererOption {
	return func(rd *Renderer) {
		rd.reloadURL = url
	}
}

// WithoutCache makes the renderer re-read templates on every render.
func WithoutCache() RendererOption {
	return func(rd *Renderer) {
		rd.noCache = true
	}
}

// NewRenderer returns a renderer for the templates in dir.
func NewRenderer(dir string, opts ...RendererOption) *Renderer {
	rd := &Renderer{
		dir:    dir,
		funcs:  template.FuncMap{"slot": func() template.HTML { return "" }},
		chains: make(map[string][]*template.Template),
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Render executes the named template and its parents with data.
func (rd *Renderer) Render(w io.Writer, name string, data any) error {
	chain, err := rd.chain(name)
	if err != nil {
		return err
	}

	var slot template.HTML
	var buf bytes.Buffer
	for _, t := range chain {
		tc, err := t.Clone()
		if err != nil {
			return err
		}
		content := slot
		tc.Funcs(template.FuncMap{"slot": func() template.HTML { return content }})

		buf.Reset()
		if err := tc.Execute(&buf, data); err != nil {
			return err
		}
		slot = template.HTML(buf.String())
	}

	out := string(slot)
	if rd.reloadURL != "" {
		out = injectScript(out, reloadScript(rd.reloadURL))
	}
	_, err = io.WriteString(w, out)
	return err
}

// chain returns the parsed templates from name up to its root.
func (rd *Renderer) chain(name string) ([]*template.Template, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	if c, ok := rd.chains[name]; ok && !rd.noCache {
		return c, nil
	}

	var c []*template.Template
	seen := make(map[string]bool)
	for cur := name; ; {
		if seen[cur] {
			return nil, fmt.Errorf("template %s: extends cycle through %s", name, cur)
		}
		seen[cur] = true

		src, err := os.ReadFile(filepath.Join(rd.dir, filepath.FromSlash(cur)))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", cur, err)
		}
		t, err := template.New(cur).Funcs(rd.funcs).Parse(string(src))
		if err != nil {
			return nil, err
		}
		c = append(c, t)

		parent, ok := Parent(src)
		if !ok {
			break
		}
		cur = parent
	}

	rd.chains[name] = c
	return c, nil
}

func reloadScript(url string) string {
	return `<script>(function(){var ws=new WebSocket(` + strconv.Quote(url) + `);` +
		`ws.onmessage=function(e){var m=JSON.parse(e.data);` +
		`if(m.type==="reload"){location.reload()}else if(m.type==="error"){console.error("routekit: "+m.error)}};` +
		`})();</script>`
}

func injectScript(page, script string) string {
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + script + page[i:]
	}
	return page + script
}
