package keyboard

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Transition is the direction of a key event.
type Transition uint8

const (
	Down Transition = iota
	Up
)

func (t Transition) String() string {
	if t == Up {
		return "up"
	}
	return "down"
}

// Flags mirrors the flag bits of KBDLLHOOKSTRUCT.
type Flags uint32

const (
	FlagExtended        Flags = 0x01
	FlagLowerILInjected Flags = 0x02
	FlagInjected        Flags = 0x10
	FlagAltDown         Flags = 0x20
	FlagUp              Flags = 0x80
)

// Injected reports whether the event was synthesized by software.
func (f Flags) Injected() bool { return f&FlagInjected != 0 }

// Extended reports whether the key is on the extended part of the keyboard.
func (f Flags) Extended() bool { return f&FlagExtended != 0 }

// RawEvent is what a hook backend reports for one transition.
type RawEvent struct {
	Key        KeyID
	ScanCode   uint32
	Flags      Flags
	Transition Transition
	// OSTime is the backend timestamp in milliseconds, zero when unknown.
	OSTime uint32
}

// Event is the immutable snapshot of one accepted key-down.
type Event struct {
	Key        KeyID
	ScanCode   uint32
	Char       rune
	Printable  bool
	Name       string
	Flags      Flags
	Seq        uint64
	Transition Transition
	Time       time.Time
}

// NewEvent translates raw with the shift/caps state of st.
func NewEvent(raw RawEvent, st State, seq uint64) Event {
	char, ok, name := Translate(raw.Key, st.Shift(), st.Caps())
	return Event{
		Key:        raw.Key,
		ScanCode:   raw.ScanCode,
		Char:       char,
		Printable:  ok,
		Name:       name,
		Flags:      raw.Flags,
		Seq:        seq,
		Transition: raw.Transition,
		Time:       time.Now(),
	}
}

func (e Event) String() string {
	if e.Printable {
		return fmt.Sprintf("#%d %s %q vk=0x%02X sc=0x%02X", e.Seq, e.Transition, e.Char, uint32(e.Key), e.ScanCode)
	}
	return fmt.Sprintf("#%d %s %s vk=0x%02X sc=0x%02X", e.Seq, e.Transition, e.Name, uint32(e.Key), e.ScanCode)
}

// InjectionGuard counts in-flight synthetic input. Backends that cannot
// see the OS injected flag mark events as injected while it is active.
type InjectionGuard struct {
	n atomic.Int32
}

// Begin marks the start of synthetic input; the returned func ends it.
func (g *InjectionGuard) Begin() func() {
	if g == nil {
		return func() {}
	}
	g.n.Add(1)
	return func() { g.n.Add(-1) }
}

// Active reports whether synthetic input is in flight.
func (g *InjectionGuard) Active() bool {
	return g != nil && g.n.Load() > 0
}
