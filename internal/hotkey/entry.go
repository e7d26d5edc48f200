package hotkey

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/taglme/macrokeys/internal/keyboard"
)

// Tier is a hotkey activation category.
type Tier uint8

const (
	// Unconditional entries match on modifiers and key alone.
	Unconditional Tier = iota
	// LockGated entries match only while their lock key is latched.
	LockGated
	// FocusGated entries match only while the foreground window satisfies
	// the entry's focus rule.
	FocusGated
)

func (t Tier) String() string {
	switch t {
	case Unconditional:
		return "unconditional"
	case LockGated:
		return "lock"
	case FocusGated:
		return "focus"
	}
	return "tier(" + strconv.Itoa(int(t)) + ")"
}

// ParseTier accepts the configuration spelling of a tier; empty means
// Unconditional.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unconditional", "global":
		return Unconditional, nil
	case "lock", "scroll_lock", "lock_gated":
		return LockGated, nil
	case "focus", "window", "focus_gated":
		return FocusGated, nil
	}
	return 0, fmt.Errorf("%w: unknown tier %q", ErrConfig, s)
}

// Match selects how an entry's modifier mask is compared with the live one.
type Match uint8

const (
	// Exact requires the live modifiers to equal the mask.
	Exact Match = iota
	// AtLeast requires the mask bits and ignores the others.
	AtLeast
)

func (m Match) matches(required, live keyboard.Modifier) bool {
	if m == AtLeast {
		return live&required == required
	}
	return live&keyboard.AllModifiers == required
}

// FocusRule is the predicate of a focus-gated entry.
type FocusRule struct {
	// Classes are the accepted foreground window classes.
	Classes []string
	// IncludeDesktop also accepts the desktop as foreground.
	IncludeDesktop bool
	// SuppressOnMiss swallows the key when the predicate fails.
	SuppressOnMiss bool
}

// DesktopClasses are the window classes of the shell desktop.
var DesktopClasses = []string{"WorkerW", "Progman"}

// Allows reports whether a window of class satisfies the rule.
func (r FocusRule) Allows(class string) bool {
	for _, c := range r.Classes {
		if strings.EqualFold(c, class) {
			return true
		}
	}
	if r.IncludeDesktop {
		for _, c := range DesktopClasses {
			if c == class {
				return true
			}
		}
	}
	return false
}

// Action names a catalog handler and the arguments bound to it.
type Action struct {
	Name string
	Args []string
}

func (a Action) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	return a.Name + "(" + strings.Join(a.Args, ", ") + ")"
}

// Invocation is what a handler receives when its hotkey fires.
type Invocation struct {
	Args  Args
	Event keyboard.Event
	State keyboard.State
}

// Handler runs an action. Handlers are called on arbitrary goroutines and
// must not call back into the dispatcher.
type Handler func(ctx context.Context, inv Invocation) error

// Resolver maps action names to handlers.
type Resolver interface {
	Resolve(name string) (Handler, bool)
}

// Entry is one configured hotkey.
type Entry struct {
	Tier  Tier
	Mods  keyboard.Modifier
	Key   keyboard.KeyID
	Match Match
	// Lock gates LockGated entries; zero means scroll lock.
	Lock  keyboard.Lock
	Focus FocusRule
	// PassThrough runs the action but still lets the key through.
	PassThrough bool
	Action      Action

	handler Handler
}

// Chord returns the display form of the entry's key combination.
func (e *Entry) Chord() string {
	return keyboard.FormatChord(e.Mods, e.Key)
}

// Run invokes the resolved handler.
func (e *Entry) Run(ctx context.Context, ev keyboard.Event, st keyboard.State) error {
	if e.handler == nil {
		return fmt.Errorf("hotkey %s: action %q not resolved", e.Chord(), e.Action.Name)
	}
	return e.handler(ctx, Invocation{Args: Args(e.Action.Args), Event: ev, State: st})
}

// Args are the string arguments bound to an action.
type Args []string

// String returns argument i or def.
func (a Args) String(i int, def string) string {
	if i < len(a) && a[i] != "" {
		return a[i]
	}
	return def
}

// Int returns argument i parsed as an integer, or def when absent.
func (a Args) Int(i int, def int) (int, error) {
	if i >= len(a) || a[i] == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(a[i]))
	if err != nil {
		return 0, fmt.Errorf("argument %d: %w", i, err)
	}
	return n, nil
}
