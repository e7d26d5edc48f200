package hotkey

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/taglme/macrokeys/internal/keyboard"
)

var (
	// ErrConfig wraps every registry construction failure.
	ErrConfig = errors.New("hotkey configuration error")
	// ErrDuplicate reports two entries with the same tier, mask and key.
	ErrDuplicate = fmt.Errorf("%w: duplicate hotkey", ErrConfig)
	// ErrUnknownAction reports an entry naming an action nobody provides.
	ErrUnknownAction = fmt.Errorf("%w: unknown action", ErrConfig)
	// ErrNoModifier reports a non lock-gated entry without modifiers.
	ErrNoModifier = fmt.Errorf("%w: hotkey needs a modifier", ErrConfig)
)

type chord struct {
	mods keyboard.Modifier
	key  keyboard.KeyID
}

type table struct {
	exact   map[chord]*Entry
	atLeast map[keyboard.KeyID][]*Entry
}

func newTable() *table {
	return &table{
		exact:   make(map[chord]*Entry),
		atLeast: make(map[keyboard.KeyID][]*Entry),
	}
}

func (t *table) lookup(mods keyboard.Modifier, key keyboard.KeyID) *Entry {
	if e, ok := t.exact[chord{mods & keyboard.AllModifiers, key}]; ok {
		return e
	}
	for _, e := range t.atLeast[key] {
		if e.Match.matches(e.Mods, mods) {
			return e
		}
	}
	return nil
}

// Registry is the immutable hotkey table. It is safe for concurrent reads.
type Registry struct {
	tiers   [3]*table
	entries []*Entry
	gating  keyboard.Lock
}

// NewRegistry validates entries, resolves their actions and builds the
// lookup tables.
func NewRegistry(entries []Entry, resolver Resolver) (*Registry, error) {
	r := &Registry{}
	for i := range r.tiers {
		r.tiers[i] = newTable()
	}
	seen := make(map[Tier]map[chord]*Entry)

	for i := range entries {
		e := entries[i]
		if int(e.Tier) >= len(r.tiers) {
			return nil, fmt.Errorf("%w: entry %d has tier %d", ErrConfig, i, e.Tier)
		}
		if e.Key == 0 {
			return nil, fmt.Errorf("%w: entry %d (%s) has no key", ErrConfig, i, e.Action)
		}
		if e.Tier != LockGated && e.Mods == 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrNoModifier, e.Tier, e.Chord())
		}
		if e.Tier == LockGated && e.Lock == 0 {
			e.Lock = keyboard.ScrollLock
		}
		if e.Tier == FocusGated && len(e.Focus.Classes) == 0 && !e.Focus.IncludeDesktop {
			return nil, fmt.Errorf("%w: focus hotkey %s has no window classes", ErrConfig, e.Chord())
		}

		h, ok := resolver.Resolve(e.Action.Name)
		if !ok {
			return nil, fmt.Errorf("%w %q for %s", ErrUnknownAction, e.Action.Name, e.Chord())
		}
		e.handler = h

		c := chord{e.Mods, e.Key}
		if seen[e.Tier] == nil {
			seen[e.Tier] = make(map[chord]*Entry)
		}
		if prev, dup := seen[e.Tier][c]; dup {
			return nil, fmt.Errorf("%w: %s %s bound to both %s and %s",
				ErrDuplicate, e.Tier, e.Chord(), prev.Action, e.Action)
		}

		entry := &e
		seen[e.Tier][c] = entry
		r.entries = append(r.entries, entry)
		t := r.tiers[e.Tier]
		if e.Match == AtLeast {
			t.atLeast[e.Key] = append(t.atLeast[e.Key], entry)
		} else {
			t.exact[c] = entry
		}
		if e.Tier == LockGated {
			r.gating |= e.Lock
		}
	}

	// Most specific at-least entry wins.
	for _, t := range r.tiers {
		for _, list := range t.atLeast {
			sort.SliceStable(list, func(i, j int) bool {
				return bits.OnesCount8(uint8(list[i].Mods)) > bits.OnesCount8(uint8(list[j].Mods))
			})
		}
	}
	return r, nil
}

// Lookup returns the entry of tier matching st and key, or nil. LockGated
// entries only match while their lock is latched in st.
func (r *Registry) Lookup(tier Tier, st keyboard.State, key keyboard.KeyID) *Entry {
	if int(tier) >= len(r.tiers) {
		return nil
	}
	e := r.tiers[tier].lookup(st.Mods, key)
	if e == nil {
		return nil
	}
	if tier == LockGated && st.Locks&e.Lock == 0 {
		return nil
	}
	return e
}

// GatingLocks is the union of the locks used by LockGated entries.
func (r *Registry) GatingLocks() keyboard.Lock {
	return r.gating
}

// Entries returns the entries in configuration order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len is the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
