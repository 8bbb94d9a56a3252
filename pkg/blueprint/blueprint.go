package blueprint

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// HandlerFunc is the shape of every registered route handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) Response

// Route is a registered route.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Handler HandlerFunc
}

// Blueprint is a named group of routes. Generated modules declare one and
// register each handler on it at package initialisation.
type Blueprint struct {
	name string

	mu     sync.RWMutex
	routes []Route
	byName map[string]int
}

// New returns an empty blueprint.
func New(name string) *Blueprint {
	return &Blueprint{name: name, byName: make(map[string]int)}
}

// Name returns the blueprint's name.
func (b *Blueprint) Name() string {
	return b.name
}

// Route registers h for method and pattern under name. Patterns use
// <param> placeholders. Registering a name twice panics, as does
// registering the same method and pattern twice.
func (b *Blueprint) Route(method, pattern, name string, h HandlerFunc) Route {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byName[name]; ok {
		panic(fmt.Sprintf("blueprint %s: route name %q registered twice", b.name, name))
	}
	for _, rt := range b.routes {
		if rt.Method == method && rt.Pattern == pattern {
			panic(fmt.Sprintf("blueprint %s: %s %s registered twice", b.name, method, pattern))
		}
	}

	rt := Route{Method: method, Pattern: pattern, Name: name, Handler: h}
	b.byName[name] = len(b.routes)
	b.routes = append(b.routes, rt)
	return rt
}

// Routes returns the registered routes in registration order.
func (b *Blueprint) Routes() []Route {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Route(nil), b.routes...)
}

// URLFor builds the URL of the named route. params alternates parameter
// names and values.
func (b *Blueprint) URLFor(name string, params ...string) (string, error) {
	b.mu.RLock()
	i, ok := b.byName[name]
	var pattern string
	if ok {
		pattern = b.routes[i].Pattern
	}
	b.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("blueprint %s: no route named %q", b.name, name)
	}
	if len(params)%2 != 0 {
		return "", fmt.Errorf("blueprint %s: odd number of URL parameters", b.name)
	}

	values := make(map[string]string, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		values[params[i]] = params[i+1]
	}

	var missing []string
	u := paramRe.ReplaceAllStringFunc(pattern, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := values[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("blueprint %s: route %q needs %s", b.name, name, strings.Join(missing, ", "))
	}
	return u, nil
}

// Mount registers every route on r. Responses are written through the Env
// installed by WithEnv, or a bare one when there is none.
func (b *Blueprint) Mount(r chi.Router) {
	for _, rt := range b.Routes() {
		method := strings.ToUpper(rt.Method)
		if !standardMethods[method] {
			chi.RegisterMethod(method)
		}
		r.Method(method, ChiPattern(rt.Pattern), Handler(rt.Handler))
	}
}

var paramRe = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_]*)>`)

var standardMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
	http.MethodPut: true, http.MethodPatch: true, http.MethodDelete: true,
	http.MethodConnect: true, http.MethodOptions: true, http.MethodTrace: true,
}

// ChiPattern converts a <param> pattern to chi's {param} syntax.
func ChiPattern(pattern string) string {
	return paramRe.ReplaceAllString(pattern, "{$1}")
}

// Param returns the value of a path parameter of the current request.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
