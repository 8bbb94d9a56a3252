package blueprint

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAddr        = "ROUTEKIT_ADDR"
	EnvReloadURL   = "ROUTEKIT_RELOAD_URL"
	EnvMetricsPath = "ROUTEKIT_METRICS_PATH"
)

// Config configures Serve.
type Config struct {
	// Addr is the listen address (default ":8000").
	Addr string

	// TemplatesDir holds the rendered templates (default "templates").
	TemplatesDir string

	// StaticDir is served under StaticPrefix (default "app/static").
	StaticDir string

	// StaticPrefix is the URL prefix of static files (default "/static/").
	StaticPrefix string

	// ReloadURL, when set, is the websocket the injected reload script
	// connects to. Templates are re-read on every render.
	ReloadURL string

	// MetricsPath, when set, exposes request metrics there.
	MetricsPath string

	// Registry holds the request metrics. Default: a fresh registry.
	Registry *prometheus.Registry

	// TracerName names the OpenTelemetry tracer (default "routekit").
	TracerName string

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// ConfigFromEnv returns the default Config with the ROUTEKIT_ variables
// applied.
func ConfigFromEnv() Config {
	var cfg Config
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	cfg.ReloadURL = os.Getenv(EnvReloadURL)
	cfg.MetricsPath = os.Getenv(EnvMetricsPath)
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = "templates"
	}
	if c.StaticDir == "" {
		c.StaticDir = "app/static"
	}
	if c.StaticPrefix == "" {
		c.StaticPrefix = "/static/"
	}
	if !strings.HasSuffix(c.StaticPrefix, "/") {
		c.StaticPrefix += "/"
	}
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// NewHandler returns the router serving bps with static files, request
// logging, metrics and tracing.
func NewHandler(cfg Config, bps ...*Blueprint) http.Handler {
	cfg = cfg.withDefaults()

	var opts []RendererOption
	if cfg.ReloadURL != "" {
		opts = append(opts, WithReloadScript(cfg.ReloadURL), WithoutCache())
	}
	env := &Env{
		Renderer: NewRenderer(cfg.TemplatesDir, opts...),
		Logger:   cfg.Logger,
	}
	metrics := NewMetrics(WithRegistry(cfg.Registry))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(Canonical)
	r.Use(requestLogger(cfg.Logger))
	r.Use(metrics.Middleware)
	r.Use(Tracing(cfg.TracerName))
	r.Use(WithEnv(env))

	if cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}
	r.Handle(cfg.StaticPrefix+"*", http.StripPrefix(cfg.StaticPrefix, http.FileServer(http.Dir(cfg.StaticDir))))

	for _, bp := range bps {
		bp.Mount(r)
	}
	return r
}

// Serve serves bps until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, cfg Config, bps ...*Blueprint) error {
	cfg = cfg.withDefaults()
	logger := cfg.Logger.With("component", "server")

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg, bps...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status(ww),
				"duration", time.Since(start),
			)
		})
	}
}
