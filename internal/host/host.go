// Package host runs optimization work off the caller's goroutine. Runs are
// tagged with increasing identifiers per session; a newer run supersedes
// older ones, whose results are discarded on arrival.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/iwvelando/fi-forecast/internal/metrics"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"go.uber.org/zap"
)

var (
	ErrHostUnavailable = errors.New("computation host unavailable")
	ErrClosed          = errors.New("computation host closed")
	ErrStale           = errors.New("run superseded by a newer run")
	ErrTaskFailed      = errors.New("task failed")
)

// Task is one unit of optimization work.
type Task func(ctx context.Context) optimization.Result

// Host is a bounded launcher for background tasks.
type Host struct {
	logger *zap.Logger
	slots  chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a host running at most maxConcurrent tasks at once.
func New(logger *zap.Logger, maxConcurrent int) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = constants.DefaultMaxConcurrentRuns
	}
	return &Host{logger: logger, slots: make(chan struct{}, maxConcurrent)}
}

// Go starts fn in the background. It never blocks: when every slot is busy
// it returns ErrHostUnavailable, and after Close it returns ErrClosed.
func (h *Host) Go(fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	select {
	case h.slots <- struct{}{}:
	default:
		return ErrHostUnavailable
	}

	h.wg.Add(1)
	metrics.RunsInFlight.Inc()
	go func() {
		defer func() {
			metrics.RunsInFlight.Dec()
			<-h.slots
			h.wg.Done()
		}()
		fn()
	}()
	return nil
}

// Close stops accepting work and waits for running tasks to finish.
func (h *Host) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.wg.Wait()
}

// Session returns a new run sequence sharing this host's slots.
func (h *Host) Session() *Session {
	return &Session{host: h, logger: h.logger}
}

// Session tracks the current run of one consumer.
type Session struct {
	host    *Host
	logger  *zap.Logger
	current atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Run is a handle on one submitted task.
type Run struct {
	ID      uint64
	session *Session
	task    Task
	ctx     context.Context
	done    chan struct{}
	result  optimization.Result
	failed  error
	sync    bool
}

// Current returns the identifier of the newest run.
func (s *Session) Current() uint64 {
	return s.current.Load()
}

// Submit starts task as the newest run and cancels the context of the run it
// supersedes. When the host cannot take the task it runs synchronously
// before Submit returns.
func (s *Session) Submit(ctx context.Context, task Task) *Run {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	id := s.current.Add(1)
	s.mu.Unlock()

	run := &Run{ID: id, session: s, task: task, ctx: runCtx, done: make(chan struct{})}

	err := s.host.Go(func() {
		defer close(run.done)
		run.result, run.failed = execute(runCtx, task)
	})
	if err != nil {
		s.logger.Warn("background host unavailable, running synchronously",
			zap.String("op", "host.Submit"),
			zap.Uint64("runId", id),
			zap.Error(err),
		)
		metrics.HostFallbacks.Inc()
		run.sync = true
		run.result, run.failed = execute(runCtx, task)
		close(run.done)
	}
	return run
}

// Synchronous reports whether the run executed on the caller's goroutine.
func (r *Run) Synchronous() bool {
	return r.sync
}

// Wait blocks until the run finishes or ctx is done. A result that arrives
// after a newer run was submitted is discarded with ErrStale. A background
// task that panicked is re-run synchronously once.
func (r *Run) Wait(ctx context.Context) (optimization.Result, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return optimization.Result{}, ctx.Err()
	}

	if r.ID != r.session.Current() {
		r.session.logger.Debug("discarding stale run",
			zap.String("op", "host.Wait"),
			zap.Uint64("runId", r.ID),
			zap.Uint64("currentRunId", r.session.Current()),
		)
		metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeStale).Inc()
		return optimization.Result{}, ErrStale
	}

	if r.failed != nil && !r.sync {
		r.session.logger.Warn("background run failed, re-running synchronously",
			zap.String("op", "host.Wait"),
			zap.Uint64("runId", r.ID),
			zap.Error(r.failed),
		)
		metrics.HostFallbacks.Inc()
		r.sync = true
		r.result, r.failed = execute(r.ctx, r.task)
	}
	if r.failed != nil {
		return optimization.Result{}, r.failed
	}
	return r.result, nil
}

// Close cancels the newest run.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func execute(ctx context.Context, task Task) (result optimization.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrTaskFailed, rec)
		}
	}()
	return task(ctx), nil
}
