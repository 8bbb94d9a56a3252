package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/routekit/internal/config"
	"github.com/vango-dev/routekit/internal/emit"
	"github.com/vango-dev/routekit/internal/errors"
)

// State is a step of a build pass.
type State int

const (
	StateClean State = iota
	StatePreserving
	StateScaffolding
	StateWalking
	StateEmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePreserving:
		return "preserving"
	case StateScaffolding:
		return "scaffolding"
	case StateWalking:
		return "walking"
	case StateEmitting:
		return "emitting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step describes the state for progress output.
func (s State) Step() string {
	switch s {
	case StateClean:
		return "Cleaning output directory..."
	case StatePreserving:
		return "Preserving output directory..."
	case StateScaffolding:
		return "Writing skeleton..."
	case StateWalking:
		return "Walking routes..."
	case StateEmitting:
		return "Emitting templates and module..."
	case StateDone:
		return "Done"
	default:
		return ""
	}
}

// Result describes a finished pass.
type Result struct {
	// PassID identifies the pass in logs and traces.
	PassID string

	// Duration is how long the pass took.
	Duration time.Duration

	// States are the states the pass went through, in order.
	States []State

	// Routes is the registered route table.
	Routes []emit.Route

	// Written, Skipped and Removed are output-relative paths. Skipped
	// files had an unchanged digest; Removed files were stale.
	Written []string
	Skipped []string
	Removed []string

	// Diffs is set in check mode: one entry per output that differs from
	// the disk.
	Diffs []Diff
}

// Options configures the builder.
type Options struct {
	// Incremental keeps the output tree and rewrites only changed files.
	Incremental bool

	// Check computes the outputs and diffs them against the disk without
	// writing anything.
	Check bool

	// Logger receives pass diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// OnProgress is called on every state transition.
	OnProgress func(state State)
}

// Builder runs build passes for one project.
type Builder struct {
	config  *config.Config
	options Options
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if !options.Incremental && cfg.Build.Incremental {
		options.Incremental = true
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		config:  cfg,
		options: options,
		logger:  logger.With("component", "build"),
		tracer:  otel.Tracer("github.com/vango-dev/routekit/internal/build"),
	}
}

// pass is the mutable state of one Build call.
type pass struct {
	id     string
	ctx    context.Context
	logger *slog.Logger
	result *Result
	files  *Files
	old    *Manifest

	// touched is set once the pass starts changing the output tree.
	touched bool
}

// Build runs one pass.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	p := &pass{
		id:     uuid.NewString(),
		result: &Result{},
		files:  NewFiles(),
	}
	p.result.PassID = p.id
	p.logger = b.logger.With("pass", p.id)

	ctx, span := b.tracer.Start(ctx, "build.pass", trace.WithAttributes(
		attribute.String("routekit.pass_id", p.id),
		attribute.Bool("routekit.incremental", b.options.Incremental),
		attribute.Bool("routekit.check", b.options.Check),
	))
	defer span.End()
	p.ctx = ctx

	err := b.run(p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if p.touched && !b.options.Incremental {
			if rmErr := os.RemoveAll(b.config.OutputPath()); rmErr != nil {
				p.logger.Warn("remove output after failed pass", "error", rmErr)
			}
		}
		p.logger.Debug("pass failed", "error", err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")

	p.result.Duration = time.Since(start)
	p.logger.Debug("pass done",
		"duration", p.result.Duration,
		"written", len(p.result.Written),
		"skipped", len(p.result.Skipped),
	)
	return p.result, nil
}

func (b *Builder) run(p *pass) error {
	pre, err := b.preflight()
	if err != nil {
		return err
	}

	out := b.config.OutputPath()
	p.old, err = ReadManifest(out)
	if err != nil {
		p.logger.Warn("ignoring unreadable manifest", "error", err)
		p.old = &Manifest{Files: map[string]string{}}
	}

	write := !b.options.Check
	if b.options.Incremental || b.options.Check {
		err = b.state(p, StatePreserving, func() error {
			if !write {
				return nil
			}
			return ensureDirs(out)
		})
	} else {
		p.old = &Manifest{Files: map[string]string{}}
		err = b.state(p, StateClean, func() error {
			p.touched = true
			if err := os.RemoveAll(out); err != nil {
				return errors.New("E163").WithDetail("Could not remove " + out).Wrap(err)
			}
			return nil
		})
	}
	if err != nil {
		return err
	}

	skeleton := NewFiles()
	err = b.state(p, StateScaffolding, func() error {
		if err := addSkeleton(skeleton, pre.blueprintsImport); err != nil {
			return err
		}
		p.files.Merge(skeleton)
		if !write {
			return nil
		}
		if err := ensureDirs(out); err != nil {
			return err
		}
		return b.writeFiles(p, skeleton)
	})
	if err != nil {
		return err
	}

	generated := NewFiles()
	err = b.state(p, StateWalking, func() error {
		routes, err := b.walk(p.ctx, generated, p.logger)
		if err != nil {
			return err
		}
		p.result.Routes = routes
		return addAssets(generated, b.config)
	})
	if err != nil {
		return err
	}

	err = b.state(p, StateEmitting, func() error {
		p.files.Merge(generated)
		manifest := p.files.Manifest()
		data, err := manifest.Bytes()
		if err != nil {
			return err
		}

		if !write {
			p.result.Diffs, err = diffTree(out, p.files, p.old, data)
			return err
		}
		if err := b.writeFiles(p, generated); err != nil {
			return err
		}
		if err := b.removeStale(p); err != nil {
			return err
		}
		return writeAtomic(filepath.Join(out, ManifestName), data)
	})
	if err != nil {
		return err
	}

	return b.state(p, StateDone, func() error { return nil })
}

// state runs fn as one traced state of the pass.
func (b *Builder) state(p *pass, s State, fn func() error) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	p.result.States = append(p.result.States, s)
	if b.options.OnProgress != nil {
		b.options.OnProgress(s)
	}

	_, span := b.tracer.Start(p.ctx, "build."+s.String())
	defer span.End()

	p.logger.Debug("state", "state", s.String())
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// writeFiles writes files under the output directory, skipping those the
// previous manifest records with the same digest.
func (b *Builder) writeFiles(p *pass, files *Files) error {
	out := b.config.OutputPath()
	for _, rel := range files.Paths() {
		data := files.Get(rel)
		dst := filepath.Join(out, filepath.FromSlash(rel))

		if b.options.Incremental && p.old.Files[rel] == Digest(data) {
			if _, err := os.Stat(dst); err == nil {
				p.result.Skipped = append(p.result.Skipped, rel)
				continue
			}
		}
		if err := writeAtomic(dst, data); err != nil {
			return err
		}
		p.result.Written = append(p.result.Written, rel)
	}
	return nil
}

// removeStale deletes files the previous pass wrote that this pass did not
// produce.
func (b *Builder) removeStale(p *pass) error {
	var stale []string
	for rel := range p.old.Files {
		if !p.files.Has(rel) {
			stale = append(stale, rel)
		}
	}
	sort.Strings(stale)

	out := b.config.OutputPath()
	for _, rel := range stale {
		err := os.Remove(filepath.Join(out, filepath.FromSlash(rel)))
		if err != nil && !os.IsNotExist(err) {
			return errors.New("E163").WithDetail("Could not remove stale " + rel).Wrap(err)
		}
		p.result.Removed = append(p.result.Removed, rel)
	}
	return nil
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}
