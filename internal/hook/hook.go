// Package hook installs the system-wide keyboard hook and feeds every
// transition to a Filter.
package hook

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taglme/macrokeys/internal/keyboard"
)

var (
	// ErrInstall is returned when the OS refuses the hook.
	ErrInstall = errors.New("keyboard hook install failed")
	// ErrCloseTimeout is returned when the hook thread did not exit in time.
	ErrCloseTimeout = errors.New("keyboard hook did not stop in time")
)

// DefaultCloseTimeout bounds Handle.Close.
const DefaultCloseTimeout = 2 * time.Second

// Filter decides one transition. Returning true swallows the key. It is
// called on the hook thread and must return promptly.
type Filter func(raw keyboard.RawEvent) (suppress bool)

// Options configures Install.
type Options struct {
	Logger *slog.Logger
	// Guard marks events as injected on backends that cannot see the OS
	// flag.
	Guard        *keyboard.InjectionGuard
	CloseTimeout time.Duration
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = DefaultCloseTimeout
	}
}

// Handle controls an installed hook.
type Handle struct {
	done    chan struct{}
	once    sync.Once
	stop    func()
	timeout time.Duration
}

func newHandle(timeout time.Duration) *Handle {
	return &Handle{done: make(chan struct{}), timeout: timeout}
}

// Done is closed when the hook thread has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Close removes the hook and waits for the hook thread to exit.
func (h *Handle) Close() error {
	h.once.Do(func() {
		if h.stop != nil {
			h.stop()
		}
	})
	select {
	case <-h.done:
		return nil
	case <-time.After(h.timeout):
		return ErrCloseTimeout
	}
}

// Install starts the hook thread and returns once the hook is live.
func Install(filter Filter, opts Options) (*Handle, error) {
	opts.defaults()
	return install(filter, opts)
}
