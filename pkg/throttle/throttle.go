package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"stock-insight/pkg/logger"
)

var (
	// ErrCoolingDown is returned without touching the network when the
	// provider was recently rate limited upstream.
	ErrCoolingDown = errors.New("provider is cooling down")
	// ErrStopped is returned for tasks still queued when the scheduler
	// shuts down.
	ErrStopped = errors.New("throttle scheduler stopped")
)

type task struct {
	name string
	run  func(ctx context.Context) error
	done chan error
}

// Scheduler serializes outbound fetches through a single worker that
// enforces a minimum gap between consecutive requests, and tracks
// per-provider cooldown windows after upstream rate-limit responses.
type Scheduler struct {
	log   *logger.Logger
	queue chan *task
	gap   time.Duration

	mu      sync.Mutex
	coolOff map[string]time.Time
	nowFn   func() time.Time
}

func New(gap time.Duration, queueSize int, log *logger.Logger) *Scheduler {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Scheduler{
		log:     log,
		queue:   make(chan *task, queueSize),
		gap:     gap,
		coolOff: make(map[string]time.Time),
		nowFn:   time.Now,
	}
}

// Start launches the worker loop. It returns immediately; the loop runs
// until ctx is cancelled, at which point still-queued tasks fail with
// ErrStopped.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case t := <-s.queue:
			t.done <- t.run(ctx)

			// Minimum inter-request gap, measured from task completion.
			select {
			case <-ctx.Done():
				s.drain()
				return
			case <-time.After(s.gap):
			}
		}
	}
}

func (s *Scheduler) drain() {
	for {
		select {
		case t := <-s.queue:
			t.done <- ErrStopped
		default:
			return
		}
	}
}

// Do enqueues fn and blocks until the worker has executed it, preserving
// FIFO order across all callers. A queued task cannot be aborted; if ctx
// expires while waiting, Do returns but the task still runs in its slot.
func (s *Scheduler) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	t := &task{name: name, run: fn, done: make(chan error, 1)}

	select {
	case s.queue <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkCooldown flags a provider as unavailable until now + window.
func (s *Scheduler) MarkCooldown(provider string, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coolOff[provider] = s.nowFn().Add(window)
}

// Available reports whether the provider is outside its cooldown window.
func (s *Scheduler) Available(provider string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.coolOff[provider]
	if !ok {
		return true
	}
	return s.nowFn().After(until)
}

// CooldownRemaining returns how long until the provider is usable again.
func (s *Scheduler) CooldownRemaining(provider string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.coolOff[provider]
	if !ok {
		return 0
	}
	remaining := until.Sub(s.nowFn())
	if remaining < 0 {
		return 0
	}
	return remaining
}
