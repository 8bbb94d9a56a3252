package dev

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/pkg/blueprint"
)

// watch reaps the process in the background.
func (p *processHandle) watch() {
	p.wait = make(chan struct{})
	go func() {
		p.err = p.cmd.Wait()
		close(p.wait)
	}()
}

// done is closed when the process has exited.
func (p *processHandle) done() <-chan struct{} {
	return p.wait
}

// BackendConfig configures the backend supervisor.
type BackendConfig struct {
	// Dir is the build output directory; the backend runs ./app there.
	Dir string

	// Addr is passed to the backend as its listen address.
	Addr string

	// ReloadURL is passed to the backend so pages connect to the reload
	// server.
	ReloadURL string

	// Command overrides the command line. Default: go run ./app.
	Command []string

	// Grace is how long a stopping backend gets before it is killed.
	Grace time.Duration

	Logger *slog.Logger
}

// Backend supervises the generated backend process. Each Restart stops
// the running process group before starting a new one.
type Backend struct {
	config BackendConfig
	logger *slog.Logger

	mu   sync.Mutex
	proc *processHandle
}

// NewBackend creates a backend supervisor.
func NewBackend(config BackendConfig) *Backend {
	if len(config.Command) == 0 {
		config.Command = []string{"go", "run", "./app"}
	}
	if config.Grace == 0 {
		config.Grace = 5 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{config: config, logger: logger.With("component", "backend")}
}

// CheckToolchain reports E146 when the backend command is not on PATH.
func (b *Backend) CheckToolchain() error {
	if _, err := exec.LookPath(b.config.Command[0]); err != nil {
		return errors.New("E146").
			WithSuggestion("Install Go from https://go.dev/dl/").
			Wrap(err)
	}
	return nil
}

// Restart stops the running backend, if any, and starts a new one.
func (b *Backend) Restart(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()

	env := append(os.Environ(),
		blueprint.EnvAddr+"="+b.config.Addr,
		blueprint.EnvReloadURL+"="+b.config.ReloadURL,
	)
	proc, err := startProcess(ctx, b.config.Command[0], b.config.Command[1:], b.config.Dir, env)
	if err != nil {
		return errors.New("E142").WithDetail("Could not start " + b.config.Command[0]).Wrap(err)
	}
	b.proc = proc
	b.logger.Debug("backend started", "pid", proc.cmd.Process.Pid, "addr", b.config.Addr)
	return nil
}

// Stop stops the running backend.
func (b *Backend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Backend) stopLocked() {
	if b.proc == nil {
		return
	}
	stopProcess(b.proc, b.config.Grace)
	b.logger.Debug("backend stopped")
	b.proc = nil
}

// Running reports whether a backend process is alive.
func (b *Backend) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.proc == nil {
		return false
	}
	select {
	case <-b.proc.done():
		return false
	default:
		return true
	}
}

// Exited returns a channel closed when the current backend exits, or nil
// when none runs.
func (b *Backend) Exited() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.proc == nil {
		return nil
	}
	return b.proc.done()
}
