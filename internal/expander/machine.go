// Package expander implements abbreviation and location expansion on the
// stream of typed keys.
package expander

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/taglme/macrokeys/internal/keyboard"
)

// DefaultCaretMarker marks where the cursor goes inside a replacement.
const DefaultCaretMarker = "{^}"

// Triggers start a buffer.
var Triggers = []rune{':', '!'}

// Kind is the type of a Command.
type Kind uint8

const (
	// Substitute deletes the typed abbreviation and types the replacement.
	Substitute Kind = iota + 1
	// Open deletes the typed alias and opens a location.
	Open
)

func (k Kind) String() string {
	switch k {
	case Substitute:
		return "substitute"
	case Open:
		return "open"
	}
	return "none"
}

// Command is the edit a matched buffer asks for.
type Command struct {
	Kind    Kind
	Trigger string
	// Delete is the number of characters to erase before the caret.
	Delete int
	// Text is the replacement for Substitute, without the caret marker.
	Text string
	// CaretBack is how many characters the caret moves left after typing.
	CaretBack int
	// Target is the location for Open.
	Target string
}

// Tables holds the expansion maps. Keys must start with a trigger.
type Tables struct {
	Abbreviations map[string]string
	Locations     map[string]string
	CaretMarker   string
}

// Validate reports keys that can never match.
func (t Tables) Validate() error {
	check := func(kind, k string) error {
		if k == "" {
			return fmt.Errorf("empty %s trigger", kind)
		}
		r := []rune(k)
		if !isTrigger(r[0]) {
			return fmt.Errorf("%s %q must start with one of %q", kind, k, string(Triggers))
		}
		if len(r) < 2 {
			return fmt.Errorf("%s %q needs at least one character after the trigger", kind, k)
		}
		for _, c := range r {
			if unicode.IsSpace(c) {
				return fmt.Errorf("%s %q contains whitespace", kind, k)
			}
			if unicode.IsUpper(c) {
				return fmt.Errorf("%s %q must be lowercase", kind, k)
			}
		}
		return nil
	}
	for k := range t.Abbreviations {
		if err := check("abbreviation", k); err != nil {
			return err
		}
	}
	for k := range t.Locations {
		if err := check("location", k); err != nil {
			return err
		}
		if _, dup := t.Abbreviations[k]; dup {
			return fmt.Errorf("%q is both an abbreviation and a location", k)
		}
	}
	return nil
}

func isTrigger(r rune) bool {
	for _, t := range Triggers {
		if r == t {
			return true
		}
	}
	return false
}

// Machine is the expansion state machine. It is not safe for concurrent
// use; Listener owns one on a single goroutine.
type Machine struct {
	tables Tables
	buf    []rune
}

// NewMachine returns an idle machine.
func NewMachine(t Tables) *Machine {
	if t.CaretMarker == "" {
		t.CaretMarker = DefaultCaretMarker
	}
	return &Machine{tables: t}
}

// Buffer returns the characters collected so far.
func (m *Machine) Buffer() string {
	return string(m.buf)
}

// Collecting reports whether a trigger has been seen.
func (m *Machine) Collecting() bool {
	return len(m.buf) > 0
}

// Reset returns to idle.
func (m *Machine) Reset() {
	m.buf = m.buf[:0]
}

// Feed advances the machine by one key-down and returns the command a
// completed match asks for.
func (m *Machine) Feed(ev keyboard.Event, st keyboard.State) (Command, bool) {
	if !m.Collecting() {
		if ev.Printable && isTrigger(ev.Char) && st.Mods&(keyboard.Ctrl|keyboard.Alt|keyboard.Win) == 0 {
			m.buf = append(m.buf, ev.Char)
		}
		return Command{}, false
	}

	switch ev.Key {
	case keyboard.VKSpace, keyboard.VKReturn, keyboard.VKTab, keyboard.VKEscape:
		m.Reset()
		return Command{}, false
	case keyboard.VKBack:
		m.buf = m.buf[:len(m.buf)-1]
		return Command{}, false
	}
	if !ev.Printable {
		return Command{}, false
	}
	if st.Mods&(keyboard.Ctrl|keyboard.Alt|keyboard.Win) != 0 {
		m.Reset()
		return Command{}, false
	}

	m.buf = append(m.buf, ev.Char)
	key := string(m.buf)
	if repl, ok := m.tables.Abbreviations[key]; ok {
		m.Reset()
		return m.substitution(key, repl), true
	}
	if target, ok := m.tables.Locations[key]; ok {
		m.Reset()
		return Command{Kind: Open, Trigger: key, Delete: len([]rune(key)), Target: target}, true
	}
	return Command{}, false
}

func (m *Machine) substitution(key, repl string) Command {
	cmd := Command{Kind: Substitute, Trigger: key, Delete: len([]rune(key)), Text: repl}
	if i := strings.Index(repl, m.tables.CaretMarker); i >= 0 {
		after := repl[i+len(m.tables.CaretMarker):]
		cmd.Text = repl[:i] + after
		cmd.CaretBack = len([]rune(after))
	}
	return cmd
}
