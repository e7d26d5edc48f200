package expander

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/taglme/macrokeys/internal/keyboard"
)

// Typist performs the synthetic edits of a substitution.
type Typist interface {
	Backspace(n int) error
	Type(text string) error
	Left(n int) error
}

// Opener opens a file, folder or URL.
type Opener interface {
	Open(target string) error
}

// Options configures a Listener.
type Options struct {
	Tables Tables
	Typist Typist
	Opener Opener
	Logger *slog.Logger
	// QueueSize bounds the events waiting for the listener goroutine.
	QueueSize int
	// SilenceSuggestions types a backtick before erasing so editors close
	// their completion popups, then erases it too.
	SilenceSuggestions bool
	// OnExpand is called after a command was carried out.
	OnExpand func(Command)
	// OnError is called when a command failed.
	OnError func(Command, error)
}

type item struct {
	ev keyboard.Event
	st keyboard.State
}

// Listener feeds key-downs, in order, to one Machine on its own goroutine
// and carries out the commands it emits.
type Listener struct {
	opts    Options
	machine *Machine
	queue   chan item
	lost    atomic.Bool
	dropped atomic.Uint64
	logger  *slog.Logger
}

// NewListener returns a listener; Run must be started for it to act.
func NewListener(opts Options) *Listener {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		opts:    opts,
		machine: NewMachine(opts.Tables),
		queue:   make(chan item, opts.QueueSize),
		logger:  logger,
	}
}

// Name implements dispatch.Listener.
func (l *Listener) Name() string { return "expander" }

// Notify queues ev without blocking. When the queue is full the event is
// dropped and the buffer is reset before the next one.
func (l *Listener) Notify(ev keyboard.Event, st keyboard.State) {
	select {
	case l.queue <- item{ev, st}:
	default:
		l.lost.Store(true)
		l.dropped.Add(1)
	}
}

// Dropped is the number of events lost to a full queue.
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// Run processes queued events until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case it := <-l.queue:
			l.handle(it)
		}
	}
}

func (l *Listener) handle(it item) {
	defer func() {
		if r := recover(); r != nil {
			l.machine.Reset()
			l.logger.Error("[expander] recovered panic", "panic", r, "event", it.ev.String())
		}
	}()

	if l.lost.Swap(false) {
		l.logger.Warn("[expander] events dropped, buffer reset", "dropped", l.dropped.Load())
		l.machine.Reset()
	}
	cmd, ok := l.machine.Feed(it.ev, it.st)
	if !ok {
		return
	}
	l.logger.Debug("[expander] match", "kind", cmd.Kind.String(), "trigger", cmd.Trigger)
	if err := l.execute(cmd); err != nil {
		l.logger.Error("[expander] expansion failed", "trigger", cmd.Trigger, "error", err)
		if l.opts.OnError != nil {
			l.opts.OnError(cmd, err)
		}
		return
	}
	if l.opts.OnExpand != nil {
		l.opts.OnExpand(cmd)
	}
}

func (l *Listener) execute(cmd Command) error {
	if l.opts.Typist == nil {
		return fmt.Errorf("no typist configured")
	}
	del := cmd.Delete
	if l.opts.SilenceSuggestions {
		if err := l.opts.Typist.Type("`"); err != nil {
			return fmt.Errorf("silence suggestions: %w", err)
		}
		del++
	}
	if err := l.opts.Typist.Backspace(del); err != nil {
		return fmt.Errorf("erase %q: %w", cmd.Trigger, err)
	}

	switch cmd.Kind {
	case Substitute:
		if err := l.opts.Typist.Type(cmd.Text); err != nil {
			return fmt.Errorf("type replacement of %q: %w", cmd.Trigger, err)
		}
		if cmd.CaretBack > 0 {
			if err := l.opts.Typist.Left(cmd.CaretBack); err != nil {
				return fmt.Errorf("place caret: %w", err)
			}
		}
	case Open:
		if l.opts.Opener == nil {
			return fmt.Errorf("no opener configured for %q", cmd.Target)
		}
		if err := l.opts.Opener.Open(cmd.Target); err != nil {
			return fmt.Errorf("open %q: %w", cmd.Target, err)
		}
	}
	return nil
}
