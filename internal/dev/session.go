package dev

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/config"
)

// SessionOptions configures a dev session.
type SessionOptions struct {
	// Config is the project configuration.
	Config *config.Config

	Logger *slog.Logger

	// Registry holds the build metrics. Default: a fresh registry.
	Registry *prometheus.Registry

	// Backend overrides the backend supervisor.
	Backend *Backend

	// OnPass is called after every build pass.
	OnPass func(result *build.Result, err error)

	// OnChange is called with every batch of detected changes.
	OnChange func(changes []Change)

	// OnReload is called when browsers are told to reload.
	OnReload func(clients int)
}

// Session is the dev loop: a full pass, then the watcher feeding a
// single-flight scheduler, a backend restarted after each successful pass,
// and the reload server.
type Session struct {
	config   *config.Config
	options  SessionOptions
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	watcher  *Watcher
	reload   *ReloadServer
	backend  *Backend
}

// NewSession creates a dev session.
func NewSession(options SessionOptions) *Session {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := options.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	backend := options.Backend
	if backend == nil {
		backend = NewBackend(BackendConfig{
			Dir:       cfg.OutputPath(),
			Addr:      cfg.DevAddress(),
			ReloadURL: cfg.ReloadURL(),
			Logger:    logger,
		})
	}

	return &Session{
		config:   cfg,
		options:  options,
		logger:   logger.With("component", "dev"),
		registry: reg,
		metrics:  NewMetrics(reg),
		watcher: NewWatcher(WatcherConfig{
			Paths:    CollectWatchPaths(cfg),
			Ignore:   append(append([]string{}, DefaultIgnore...), cfg.Dev.Ignore...),
			Interval: cfg.DebounceInterval(),
		}),
		reload:  NewReloadServer(),
		backend: backend,
	}
}

// Run runs the session until ctx is done. A failing first pass does not
// end the session; the next change triggers another.
func (s *Session) Run(ctx context.Context) error {
	if err := s.backend.CheckToolchain(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.config.ReloadAddress(),
		Handler:           s.reload.Handler(s.registry),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	srvErr := make(chan error, 1)
	go func() {
		s.logger.Debug("reload server starting", "address", srv.Addr)
		srvErr <- srv.Serve(ln)
	}()

	if err := s.pass(ctx, false); err == nil {
		s.logger.Debug("initial pass done")
	}

	scheduler := NewScheduler(ctx, func(ctx context.Context) error {
		return s.pass(ctx, true)
	}, nil)

	s.watcher.OnChange(func(changes []Change) {
		s.metrics.ObserveChanges(len(changes))
		for _, c := range changes {
			s.logger.Debug("changed", "path", c.Path, "type", c.Type.String(), "removed", c.Removed)
		}
		if s.options.OnChange != nil {
			s.options.OnChange(changes)
		}
		scheduler.Request()
	})
	go s.watcher.Start(ctx)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	s.logger.Debug("shutting down")
	s.watcher.Stop()
	scheduler.Wait()
	s.backend.Stop()
	s.reload.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// pass runs one build pass and restarts the backend when it succeeds.
func (s *Session) pass(ctx context.Context, incremental bool) error {
	start := time.Now()
	res, err := build.New(s.config, build.Options{
		Incremental: incremental,
		Logger:      s.logger,
	}).Build(ctx)
	s.metrics.ObservePass(time.Since(start), err)
	if s.options.OnPass != nil {
		s.options.OnPass(res, err)
	}

	if err != nil {
		s.reload.NotifyError(err.Error())
		return err
	}

	if err := s.backend.Restart(ctx); err != nil {
		s.logger.Error("backend restart failed", "error", err)
		return err
	}
	s.metrics.ObserveBackendStart()
	go s.reloadWhenUp(ctx, s.backend.Exited())
	return nil
}

// reloadWhenUp waits for the backend to accept connections, then tells
// browsers to reload.
func (s *Session) reloadWhenUp(ctx context.Context, exited <-chan struct{}) {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", s.config.DevAddress(), 200*time.Millisecond)
		if err == nil {
			conn.Close()
			s.reload.NotifyReload()
			if s.options.OnReload != nil {
				s.options.OnReload(s.reload.ClientCount())
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-exited:
			s.logger.Warn("backend exited before accepting connections")
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	s.logger.Warn("backend did not come up", "address", s.config.DevAddress())
}
