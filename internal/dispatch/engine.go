package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/keyboard"
	"github.com/taglme/macrokeys/internal/workerutil"
)

// DefaultTimeout bounds the wait for a verdict. Windows silently removes
// low-level hooks that exceed LowLevelHooksTimeout (300ms and up), so the
// wait stays well below it.
const DefaultTimeout = 200 * time.Millisecond

// FocusProvider reports the class of the foreground window.
type FocusProvider interface {
	ForegroundClass() string
}

var errActionPanicked = errors.New("action panicked")

// Listener receives every accepted key-down. Notify is called on the hook
// goroutine and must not block.
type Listener interface {
	Name() string
	Notify(ev keyboard.Event, st keyboard.State)
}

// ActionReport describes one finished hotkey action.
type ActionReport struct {
	Entry   *hotkey.Entry
	Event   keyboard.Event
	Started time.Time
	Elapsed time.Duration
	Err     error
}

// Config holds the engine settings.
type Config struct {
	// Timeout bounds the verdict wait; zero means DefaultTimeout.
	Timeout time.Duration
	// FnKey and ChordKey drive the Fn and Backtick modifier bits.
	FnKey    keyboard.KeyID
	ChordKey keyboard.KeyID
	// InitialLocks is the lock state observed at startup.
	InitialLocks keyboard.Lock
	// Override is the modifier that lets keys through while suppress-all
	// is on; zero means Shift.
	Override    keyboard.Modifier
	SuppressAll bool
	// OnAction is called after each hotkey action completes.
	OnAction func(ActionReport)
}

// Stats are counters of the engine since start.
type Stats struct {
	Events         uint64
	Injected       uint64
	Matched        uint64
	Suppressed     uint64
	Timeouts       uint64
	DoubleResolves uint64
}

type counters struct {
	events, injected, matched, suppressed, timeouts, doubleResolves atomic.Uint64
}

// Engine is the synchronous entry point of the keyboard hook. HandleKey
// must be called from one goroutine at a time, in event order.
type Engine struct {
	registry  *hotkey.Registry
	tracker   *keyboard.Tracker
	focus     FocusProvider
	runner    *workerutil.Runner
	logger    *slog.Logger
	listeners []Listener

	timeout  time.Duration
	override keyboard.Modifier
	onAction func(ActionReport)

	suppressAll atomic.Bool
	seq         uint64
	stats       counters
}

// NewEngine builds an engine over a registry. focus may be nil when no
// focus-gated entries exist.
func NewEngine(reg *hotkey.Registry, runner *workerutil.Runner, focus FocusProvider, logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Override == 0 {
		cfg.Override = keyboard.Shift
	}
	if cfg.FnKey == 0 {
		cfg.FnKey = keyboard.VKFn
	}
	if cfg.ChordKey == 0 {
		cfg.ChordKey = keyboard.VKOEM3
	}
	e := &Engine{
		registry: reg,
		tracker:  keyboard.NewTracker(cfg.FnKey, cfg.ChordKey, cfg.InitialLocks),
		focus:    focus,
		runner:   runner,
		logger:   logger,
		timeout:  cfg.Timeout,
		override: cfg.Override,
		onAction: cfg.OnAction,
	}
	e.suppressAll.Store(cfg.SuppressAll)
	return e
}

// AddListener registers l. Listeners must be added before the hook starts.
func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

// SpawnListener registers fn to run on its own task for every key-down.
// Calls for different events may run concurrently and out of order.
func (e *Engine) SpawnListener(name string, fn func(ctx context.Context, ev keyboard.Event, st keyboard.State)) {
	e.AddListener(&spawned{name: name, runner: e.runner, fn: fn})
}

// SetSuppressAll turns global suppression on or off.
func (e *Engine) SetSuppressAll(on bool) {
	e.suppressAll.Store(on)
}

// ToggleSuppressAll flips global suppression and returns the new value.
func (e *Engine) ToggleSuppressAll() bool {
	for {
		old := e.suppressAll.Load()
		if e.suppressAll.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SuppressAll reports whether global suppression is on.
func (e *Engine) SuppressAll() bool {
	return e.suppressAll.Load()
}

// Stats returns a copy of the counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Events:         e.stats.events.Load(),
		Injected:       e.stats.injected.Load(),
		Matched:        e.stats.matched.Load(),
		Suppressed:     e.stats.suppressed.Load(),
		Timeouts:       e.stats.timeouts.Load(),
		DoubleResolves: e.stats.doubleResolves.Load(),
	}
}

// Registry returns the hotkey table the engine dispatches on.
func (e *Engine) Registry() *hotkey.Registry {
	return e.registry
}

// HandleKey processes one transition and reports whether the OS should
// swallow it. It never panics.
func (e *Engine) HandleKey(raw keyboard.RawEvent) (suppress bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("[dispatch] recovered panic in hook callback", "panic", r, "vk", uint32(raw.Key))
			suppress = false
		}
	}()

	if raw.Key == 0 {
		return false
	}
	if raw.Transition == keyboard.Down {
		e.tracker.LockKeyDown(raw.Key)
	}
	if raw.Flags.Injected() {
		e.stats.injected.Add(1)
		return false
	}
	if raw.Transition == keyboard.Up {
		e.tracker.KeyUp(raw.Key)
		return false
	}
	e.tracker.KeyDown(raw.Key)

	st := e.tracker.Snapshot()
	e.seq++
	ev := keyboard.NewEvent(raw, st, e.seq)
	e.stats.events.Add(1)

	fallback := e.policy(st)
	p := NewPromise()
	if !e.runner.Go("dispatch", func(ctx context.Context) error {
		e.decide(ev, st, fallback, p)
		return nil
	}) {
		e.resolve(p, fallback, ev)
	}

	for _, l := range e.listeners {
		l.Notify(ev, st)
	}

	v, ok := p.Await(e.timeout)
	if !ok {
		e.stats.timeouts.Add(1)
		e.logger.Debug("[dispatch] verdict timed out, applying default policy",
			"event", ev.String(), "timeout", e.timeout, "verdict", fallback)
		v = fallback
	}
	if v == Suppress {
		e.stats.suppressed.Add(1)
		// A swallowed lock key never toggles the OS state.
		e.tracker.LockKeyDown(raw.Key)
	}
	return v == Suppress
}

// policy is the verdict for keys no hotkey claims.
func (e *Engine) policy(st keyboard.State) Verdict {
	if e.suppressAll.Load() && st.Mods&e.override == 0 {
		return Suppress
	}
	return Pass
}

// match finds the entry for key under st. The lock-gated tier takes
// priority while one of its locks is latched; the other tiers need a held
// modifier.
func (e *Engine) match(key keyboard.KeyID, st keyboard.State) *hotkey.Entry {
	if st.Locks&e.registry.GatingLocks() != 0 {
		if entry := e.registry.Lookup(hotkey.LockGated, st, key); entry != nil {
			return entry
		}
	}
	if st.Mods == 0 {
		return nil
	}
	if entry := e.registry.Lookup(hotkey.Unconditional, st, key); entry != nil {
		return entry
	}
	return e.registry.Lookup(hotkey.FocusGated, st, key)
}

// decide is the single verdict producer for an event. It runs off the hook
// goroutine because the focus predicate queries the OS.
func (e *Engine) decide(ev keyboard.Event, st keyboard.State, fallback Verdict, p *Promise) {
	entry := e.match(ev.Key, st)
	if entry == nil {
		e.resolve(p, fallback, ev)
		return
	}

	if entry.Tier == hotkey.FocusGated {
		class := ""
		if e.focus != nil {
			class = e.focus.ForegroundClass()
		}
		if !entry.Focus.Allows(class) {
			v := fallback
			if entry.Focus.SuppressOnMiss {
				v = Suppress
			}
			e.logger.Debug("[dispatch] focus predicate failed", "hotkey", entry.Chord(), "class", class, "verdict", v)
			e.resolve(p, v, ev)
			return
		}
	}

	v := Suppress
	if entry.PassThrough {
		v = fallback
	}
	if !e.resolve(p, v, ev) {
		return
	}
	e.stats.matched.Add(1)

	e.logger.Debug("[dispatch] hotkey matched",
		"hotkey", entry.Chord(), "tier", entry.Tier.String(), "action", entry.Action.String())
	e.runner.Go("action:"+entry.Action.Name, func(ctx context.Context) error {
		started := time.Now()
		err := errActionPanicked
		if e.onAction != nil {
			defer func() {
				e.onAction(ActionReport{Entry: entry, Event: ev, Started: started, Elapsed: time.Since(started), Err: err})
			}()
		}
		err = entry.Run(ctx, ev, st)
		return err
	})
}

// resolve reports whether v reached HandleKey. Actions only run when it did.
func (e *Engine) resolve(p *Promise, v Verdict, ev keyboard.Event) bool {
	err := p.Resolve(v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrAbandoned):
		e.logger.Debug("[dispatch] verdict arrived after timeout, dropped", "event", ev.String(), "verdict", v)
	default:
		e.stats.doubleResolves.Add(1)
		e.logger.Error("[dispatch] verdict produced twice", "event", ev.String(), "error", err)
	}
	return false
}

type spawned struct {
	name   string
	runner *workerutil.Runner
	fn     func(ctx context.Context, ev keyboard.Event, st keyboard.State)
}

func (s *spawned) Name() string { return s.name }

func (s *spawned) Notify(ev keyboard.Event, st keyboard.State) {
	s.runner.Go("listener:"+s.name, func(ctx context.Context) error {
		s.fn(ctx, ev, st)
		return nil
	})
}
