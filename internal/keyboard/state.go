package keyboard

import "strings"

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	Ctrl Modifier = 1 << iota
	Shift
	Alt
	Win
	Fn
	Backtick

	// AllModifiers is the set of bits compared by exact-match hotkeys.
	AllModifiers = Ctrl | Shift | Alt | Win | Fn | Backtick
)

var modifierNames = []struct {
	bit  Modifier
	name string
}{
	{Ctrl, "ctrl"},
	{Shift, "shift"},
	{Alt, "alt"},
	{Win, "win"},
	{Fn, "fn"},
	{Backtick, "backtick"},
}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.bit != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "+")
}

// Has reports whether every bit of o is set in m.
func (m Modifier) Has(o Modifier) bool { return m&o == o }

// Lock is a bitmask of latched lock keys.
type Lock uint8

const (
	CapsLock Lock = 1 << iota
	ScrollLock
	NumLock
)

func (l Lock) String() string {
	var parts []string
	if l&CapsLock != 0 {
		parts = append(parts, "caps")
	}
	if l&ScrollLock != 0 {
		parts = append(parts, "scroll")
	}
	if l&NumLock != 0 {
		parts = append(parts, "num")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// State is a moment-in-time copy of the tracker, handed to listeners and
// actions by value.
type State struct {
	Mods  Modifier
	Locks Lock
}

// Shift reports whether a shift key is held.
func (s State) Shift() bool { return s.Mods&Shift != 0 }

// Caps reports whether caps lock is latched.
func (s State) Caps() bool { return s.Locks&CapsLock != 0 }

type modifierKeys struct {
	bit  Modifier
	keys [2]KeyID
}

// Tracker infers held modifiers and latched locks from the transitions it
// is fed. It has a single writer (the hook goroutine) and is not safe for
// concurrent use; readers get a State from Snapshot.
type Tracker struct {
	state State
	mods  []modifierKeys
}

// NewTracker returns a tracker. fnKey and chordKey designate the keys that
// drive the Fn and Backtick bits; initial is the lock state read from the
// OS at startup.
func NewTracker(fnKey, chordKey KeyID, initial Lock) *Tracker {
	return &Tracker{
		state: State{Locks: initial},
		mods: []modifierKeys{
			{Ctrl, [2]KeyID{VKLControl, VKRControl}},
			{Shift, [2]KeyID{VKLShift, VKRShift}},
			{Alt, [2]KeyID{VKLMenu, VKRMenu}},
			{Win, [2]KeyID{VKLWin, VKRWin}},
			{Fn, [2]KeyID{fnKey, fnKey}},
			{Backtick, [2]KeyID{chordKey, chordKey}},
		},
	}
}

// KeyDown sets the bit of every modifier key matches. Repeats are no-ops.
func (t *Tracker) KeyDown(key KeyID) {
	for _, m := range t.mods {
		if key == m.keys[0] || key == m.keys[1] {
			t.state.Mods |= m.bit
		}
	}
}

// KeyUp clears the bit of every modifier key matches, even if the other
// variant of the pair is still held.
func (t *Tracker) KeyUp(key KeyID) {
	for _, m := range t.mods {
		if key == m.keys[0] || key == m.keys[1] {
			t.state.Mods &^= m.bit
		}
	}
}

// LockKeyDown toggles the lock flag of key, if it is a lock key.
func (t *Tracker) LockKeyDown(key KeyID) {
	switch key {
	case VKCapital:
		t.state.Locks ^= CapsLock
	case VKScroll:
		t.state.Locks ^= ScrollLock
	case VKNumLock:
		t.state.Locks ^= NumLock
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	return t.state
}
