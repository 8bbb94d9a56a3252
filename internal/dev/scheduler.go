package dev

import (
	"context"
	"sync"
)

// Scheduler runs build passes one at a time. Requests made while a pass
// runs collapse into a single trailing pass; a running pass is never
// canceled.
type Scheduler struct {
	ctx   context.Context
	build func(ctx context.Context) error
	after func(err error)

	mu      sync.Mutex
	running bool
	pending bool
	idle    *sync.Cond
}

// NewScheduler returns a scheduler running build. after, if non-nil, is
// called with the result of every pass. Requests are ignored once ctx is
// done.
func NewScheduler(ctx context.Context, build func(ctx context.Context) error, after func(err error)) *Scheduler {
	s := &Scheduler{ctx: ctx, build: build, after: after}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Request asks for a pass. It never blocks.
func (s *Scheduler) Request() {
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.pending = true
		return
	}
	s.running = true
	go s.loop()
}

func (s *Scheduler) loop() {
	ctx := context.WithoutCancel(s.ctx)
	for {
		err := s.build(ctx)
		if s.after != nil {
			s.after(err)
		}

		s.mu.Lock()
		if s.pending && s.ctx.Err() == nil {
			s.pending = false
			s.mu.Unlock()
			continue
		}
		s.pending = false
		s.running = false
		s.idle.Broadcast()
		s.mu.Unlock()
		return
	}
}

// Running reports whether a pass is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until no pass is running or scheduled.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}
