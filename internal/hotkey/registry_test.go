package hotkey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taglme/macrokeys/internal/keyboard"
)

type resolverFunc map[string]Handler

func (r resolverFunc) Resolve(name string) (Handler, bool) {
	h, ok := r[name]
	return h, ok
}

func noop(context.Context, Invocation) error { return nil }

var testResolver = resolverFunc{"volume_up": noop, "scroll": noop, "reopen": noop, "undo": noop}

func TestRegistryRejectsDuplicates(t *testing.T) {
	entries := []Entry{
		{Tier: Unconditional, Mods: keyboard.Ctrl | keyboard.Shift, Key: keyboard.VKOEMPlus, Action: Action{Name: "volume_up"}},
		{Tier: Unconditional, Mods: keyboard.Ctrl | keyboard.Shift, Key: keyboard.VKOEMPlus, Action: Action{Name: "scroll"}},
	}
	_, err := NewRegistry(entries, testResolver)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestRegistrySameChordDifferentTiers(t *testing.T) {
	entries := []Entry{
		{Tier: Unconditional, Mods: keyboard.Ctrl, Key: keyboard.VKA + 22, Action: Action{Name: "volume_up"}},
		{Tier: FocusGated, Mods: keyboard.Ctrl, Key: keyboard.VKA + 22, Focus: FocusRule{Classes: []string{"CabinetWClass"}}, Action: Action{Name: "reopen"}},
	}
	r, err := NewRegistry(entries, testResolver)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"unknown action", Entry{Mods: keyboard.Ctrl, Key: keyboard.VKA, Action: Action{Name: "nope"}}, ErrUnknownAction},
		{"no modifier", Entry{Key: keyboard.VKA, Action: Action{Name: "undo"}}, ErrNoModifier},
		{"no key", Entry{Mods: keyboard.Ctrl, Action: Action{Name: "undo"}}, ErrConfig},
		{"focus without classes", Entry{Tier: FocusGated, Mods: keyboard.Ctrl, Key: keyboard.VKA, Action: Action{Name: "undo"}}, ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry([]Entry{tt.entry}, testResolver)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	w := keyboard.VKA + 22
	entries := []Entry{
		{Tier: Unconditional, Mods: keyboard.Ctrl | keyboard.Shift, Key: keyboard.VKOEMPlus, Action: Action{Name: "volume_up"}},
		{Tier: Unconditional, Mods: keyboard.Alt, Key: keyboard.VKF1, Match: AtLeast, Action: Action{Name: "undo"}},
		{Tier: LockGated, Key: w, Action: Action{Name: "scroll", Args: []string{"1"}}},
		{Tier: LockGated, Mods: keyboard.Alt, Key: w, Action: Action{Name: "scroll", Args: []string{"3"}}},
	}
	r, err := NewRegistry(entries, testResolver)
	require.NoError(t, err)
	assert.Equal(t, keyboard.ScrollLock, r.GatingLocks())

	tests := []struct {
		name   string
		tier   Tier
		st     keyboard.State
		key    keyboard.KeyID
		action string
		args   []string
	}{
		{"exact match", Unconditional, keyboard.State{Mods: keyboard.Ctrl | keyboard.Shift}, keyboard.VKOEMPlus, "volume_up", nil},
		{"exact rejects extra bit", Unconditional, keyboard.State{Mods: keyboard.Ctrl | keyboard.Shift | keyboard.Alt}, keyboard.VKOEMPlus, "", nil},
		{"exact rejects missing bit", Unconditional, keyboard.State{Mods: keyboard.Ctrl}, keyboard.VKOEMPlus, "", nil},
		{"at least ignores extra bits", Unconditional, keyboard.State{Mods: keyboard.Alt | keyboard.Win}, keyboard.VKF1, "undo", nil},
		{"lock off", LockGated, keyboard.State{}, w, "", nil},
		{"lock on", LockGated, keyboard.State{Locks: keyboard.ScrollLock}, w, "scroll", []string{"1"}},
		{"lock on with alt", LockGated, keyboard.State{Mods: keyboard.Alt, Locks: keyboard.ScrollLock}, w, "scroll", []string{"3"}},
		{"wrong lock", LockGated, keyboard.State{Locks: keyboard.CapsLock}, w, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := r.Lookup(tt.tier, tt.st, tt.key)
			if tt.action == "" {
				assert.Nil(t, e)
				return
			}
			require.NotNil(t, e)
			assert.Equal(t, tt.action, e.Action.Name)
			assert.Equal(t, tt.args, e.Action.Args)
		})
	}
}

func TestFocusRuleAllows(t *testing.T) {
	rule := FocusRule{Classes: []string{"CabinetWClass"}}
	assert.True(t, rule.Allows("CabinetWClass"))
	assert.False(t, rule.Allows("WorkerW"))
	rule.IncludeDesktop = true
	assert.True(t, rule.Allows("WorkerW"))
	assert.False(t, rule.Allows("Notepad"))
}

func TestEntryRunPassesArgs(t *testing.T) {
	var got Invocation
	res := resolverFunc{"capture": func(_ context.Context, inv Invocation) error {
		got = inv
		return nil
	}}
	r, err := NewRegistry([]Entry{{Mods: keyboard.Win, Key: keyboard.VKA, Action: Action{Name: "capture", Args: []string{"5", "x"}}}}, res)
	require.NoError(t, err)

	e := r.Lookup(Unconditional, keyboard.State{Mods: keyboard.Win}, keyboard.VKA)
	require.NotNil(t, e)
	require.NoError(t, e.Run(context.Background(), keyboard.Event{Key: keyboard.VKA}, keyboard.State{Mods: keyboard.Win}))

	n, err := got.Args.Int(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "x", got.Args.String(1, ""))
	assert.Equal(t, "def", got.Args.String(2, "def"))
	_, err = got.Args.Int(1, 0)
	assert.Error(t, err)
}
