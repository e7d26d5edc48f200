package workerutil

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// PanicError is returned to fault handlers when a task panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Options configures a Runner. Nil callbacks are no-ops.
type Options struct {
	Logger *slog.Logger
	// OnFault is called after a task returned an error or panicked.
	OnFault func(task string, err error)
	// OnDone is called after every task with its duration and result.
	OnDone func(task string, started time.Time, elapsed time.Duration, err error)
}

// Runner launches one goroutine per task, recovers panics at the task
// boundary and tracks outstanding tasks for shutdown.
type Runner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	opts    Options
	mu      sync.Mutex
	closed  bool
	running atomic.Int64
}

// NewRunner returns a runner whose tasks receive a context derived from
// parent.
func NewRunner(parent context.Context, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Runner{ctx: ctx, cancel: cancel, opts: opts}
}

// Go runs fn on a new goroutine. After Shutdown it drops the task and
// returns false.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.opts.Logger.Debug("[worker] task dropped after shutdown", "task", name)
		return false
	}
	r.running.Add(1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Add(-1)
		r.run(name, fn)
	}()
	return true
}

func (r *Runner) run(name string, fn func(ctx context.Context) error) {
	started := time.Now()
	var err error
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			err = &PanicError{Value: rec, Stack: stack}
			r.opts.Logger.Error("[worker] task recovered from panic",
				"task", name,
				"panic", rec,
				"stack", string(stack),
			)
		}
		elapsed := time.Since(started)
		if err != nil {
			if _, isPanic := err.(*PanicError); !isPanic {
				r.opts.Logger.Warn("[worker] task failed", "task", name, "error", err)
			}
			if r.opts.OnFault != nil {
				r.opts.OnFault(name, err)
			}
		}
		if r.opts.OnDone != nil {
			r.opts.OnDone(name, started, elapsed, err)
		}
	}()
	err = fn(r.ctx)
}

// Running is the number of outstanding tasks.
func (r *Runner) Running() int64 {
	return r.running.Load()
}

// Shutdown stops accepting tasks, cancels the task context and waits up to
// grace for outstanding tasks. It reports whether all of them finished;
// the rest are abandoned.
func (r *Runner) Shutdown(grace time.Duration) bool {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(grace):
		r.opts.Logger.Warn("[worker] shutdown grace elapsed, abandoning tasks",
			"grace", grace, "outstanding", r.running.Load())
		return false
	}
}
