package blueprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Response is the result of a handler. It writes itself to the client.
type Response interface {
	Write(w http.ResponseWriter, r *http.Request, env *Env) error
}

// Env is what responses need to write themselves.
type Env struct {
	Renderer *Renderer
	Logger   *slog.Logger
}

type envKey struct{}

// WithEnv returns middleware making env available to route handlers.
func WithEnv(env *Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), envKey{}, env)))
		})
	}
}

// EnvFrom returns the Env installed by WithEnv, or nil.
func EnvFrom(ctx context.Context) *Env {
	env, _ := ctx.Value(envKey{}).(*Env)
	return env
}

// Handler adapts h to an http.Handler.
func Handler(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := EnvFrom(r.Context())
		resp := h(w, r)
		if resp == nil {
			resp = Status(http.StatusNoContent)
		}
		if err := resp.Write(w, r, env); err != nil {
			env.logger().Error("write response", "path", r.URL.Path, "error", err)
		}
	})
}

func (env *Env) logger() *slog.Logger {
	if env == nil || env.Logger == nil {
		return slog.Default()
	}
	return env.Logger
}

// Reply turns a handler's return values into a Response:
//
//   - nothing or a single nil: 204 No Content
//   - a trailing non-nil error: an error response
//   - a Response: itself
//   - a string: text/plain
//   - a []byte: application/octet-stream
//   - an int followed by a value: that value with the int as status
//   - anything else: JSON
//
// A trailing nil is dropped when there is more than one value.
func Reply(results ...any) Response {
	results, err := splitError(results)
	if err != nil {
		return Error(err)
	}

	switch len(results) {
	case 0:
		return Status(http.StatusNoContent)
	case 1:
		if results[0] == nil {
			return Status(http.StatusNoContent)
		}
		return replyValue(http.StatusOK, results[0])
	case 2:
		if code, ok := results[0].(int); ok {
			return replyValue(code, results[1])
		}
	}
	return JSON(http.StatusOK, results)
}

func replyValue(code int, v any) Response {
	switch v := v.(type) {
	case nil:
		return Status(code)
	case Response:
		return v
	case string:
		return Text(code, v)
	case []byte:
		return bytesResponse{code: code, contentType: "application/octet-stream", body: v}
	case error:
		return Error(v)
	default:
		return JSON(code, v)
	}
}

// splitError removes a trailing error value. Only a non-nil error is
// returned; a trailing nil is dropped when other values precede it.
func splitError(results []any) ([]any, error) {
	n := len(results)
	if n == 0 {
		return results, nil
	}
	last := results[n-1]
	if err, ok := last.(error); ok {
		return results[:n-1], err
	}
	if last == nil && n > 1 {
		return results[:n-1], nil
	}
	return results, nil
}

// Render renders the named template. The template data is the single value
// passed, or the values as a slice when there are several. A trailing
// error is handled as in Reply.
func Render(name string, args ...any) Response {
	args, err := splitError(args)
	if err != nil {
		return Error(err)
	}
	var data any
	switch len(args) {
	case 0:
	case 1:
		data = args[0]
	default:
		data = args
	}
	return renderResponse{name: name, data: data}
}

// RenderResults returns a function rendering name with its arguments as
// Render does. Generated code uses it to forward a multi-value call:
// RenderResults(name)(load()).
func RenderResults(name string) func(args ...any) Response {
	return func(args ...any) Response {
		return Render(name, args...)
	}
}

type renderResponse struct {
	name string
	data any
}

func (rr renderResponse) Write(w http.ResponseWriter, r *http.Request, env *Env) error {
	if env == nil || env.Renderer == nil {
		return Error(fmt.Errorf("no renderer for template %s", rr.name)).Write(w, r, env)
	}
	var buf bytes.Buffer
	if err := env.Renderer.Render(&buf, rr.name, rr.data); err != nil {
		return Error(err).Write(w, r, env)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

// JSON responds with v encoded as JSON.
func JSON(code int, v any) Response {
	return jsonResponse{code: code, v: v}
}

type jsonResponse struct {
	code int
	v    any
}

func (jr jsonResponse) Write(w http.ResponseWriter, r *http.Request, env *Env) error {
	body, err := json.Marshal(jr.v)
	if err != nil {
		return Error(err).Write(w, r, env)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(jr.code)
	_, err = w.Write(append(body, '\n'))
	return err
}

// Text responds with s as plain text.
func Text(code int, s string) Response {
	return bytesResponse{code: code, contentType: "text/plain; charset=utf-8", body: []byte(s)}
}

type bytesResponse struct {
	code        int
	contentType string
	body        []byte
}

func (br bytesResponse) Write(w http.ResponseWriter, _ *http.Request, _ *Env) error {
	w.Header().Set("Content-Type", br.contentType)
	w.WriteHeader(br.code)
	_, err := w.Write(br.body)
	return err
}

// Redirect redirects to url with 303 See Other.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Write(w http.ResponseWriter, r *http.Request, _ *Env) error {
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Status responds with an empty body and the given code.
func Status(code int) Response {
	return statusResponse(code)
}

type statusResponse int

func (sr statusResponse) Write(w http.ResponseWriter, _ *http.Request, _ *Env) error {
	w.WriteHeader(int(sr))
	return nil
}

// HTTPError is an error carrying the status code to respond with.
type HTTPError struct {
	Code int
	Err  error
}

func (e *HTTPError) Error() string { return e.Err.Error() }
func (e *HTTPError) Unwrap() error { return e.Err }

// Errorf returns an HTTPError with a formatted message.
func Errorf(code int, format string, args ...any) error {
	return &HTTPError{Code: code, Err: fmt.Errorf(format, args...)}
}

// Error responds with the status of err, 500 unless err is an HTTPError.
// The message of errors below 500 is sent to the client; others are only
// logged.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct {
	err error
}

func (er errorResponse) Write(w http.ResponseWriter, r *http.Request, env *Env) error {
	code := http.StatusInternalServerError
	var he *HTTPError
	if errors.As(er.err, &he) {
		code = he.Code
	}

	msg := http.StatusText(code)
	if code < 500 {
		msg = er.err.Error()
	} else {
		env.logger().Error("handler failed", "method", r.Method, "path", r.URL.Path, "error", er.err)
	}
	http.Error(w, msg, code)
	return nil
}
