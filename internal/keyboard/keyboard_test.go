package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name      string
		key       KeyID
		shift     bool
		caps      bool
		wantChar  rune
		wantOK    bool
		wantLabel string
	}{
		{"digit", VK0 + 1, false, false, '1', true, "1"},
		{"shifted digit", VK0 + 1, true, false, '!', true, "!"},
		{"shifted zero", VK0, true, false, ')', true, ")"},
		{"shifted nine", VK9, true, false, '(', true, "("},
		{"lower letter", VKA, false, false, 'a', true, "a"},
		{"shift letter", VKA, true, false, 'A', true, "A"},
		{"caps letter", VKZ, false, true, 'Z', true, "Z"},
		{"shift cancels caps", VKZ, true, true, 'z', true, "z"},
		{"semicolon", VKOEM1, false, false, ';', true, ";"},
		{"colon", VKOEM1, true, false, ':', true, ":"},
		{"equals", VKOEMPlus, false, false, '=', true, "="},
		{"plus", VKOEMPlus, true, false, '+', true, "+"},
		{"backtick", VKOEM3, false, false, '`', true, "`"},
		{"tilde", VKOEM3, true, false, '~', true, "~"},
		{"quote", VKOEM7, true, false, '"', true, "\""},
		{"space", VKSpace, false, false, ' ', true, "Space"},
		{"numpad", VKNumpad0 + 7, false, false, '7', true, "Numpad7"},
		{"function key", VKF1 + 11, false, false, 0, false, "F12"},
		{"navigation", VKHome, true, false, 0, false, "Home"},
		{"enter", VKReturn, false, false, 0, false, "Return"},
		{"underscore name", VKVolumeUp, false, false, 0, false, "Volume_Up"},
		{"modifier", VKLControl, false, false, 0, false, "Lcontrol"},
		{"unknown", 0x07, false, false, 0, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char, ok, label := Translate(tt.key, tt.shift, tt.caps)
			assert.Equal(t, tt.wantChar, char)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestTrackerModifierSymmetry(t *testing.T) {
	pairs := []struct {
		bit  Modifier
		keys []KeyID
	}{
		{Ctrl, []KeyID{VKLControl, VKRControl}},
		{Shift, []KeyID{VKLShift, VKRShift}},
		{Alt, []KeyID{VKLMenu, VKRMenu}},
		{Win, []KeyID{VKLWin, VKRWin}},
		{Fn, []KeyID{VKFn}},
		{Backtick, []KeyID{VKOEM3}},
	}

	for _, p := range pairs {
		for _, k := range p.keys {
			t.Run(Symbol(k), func(t *testing.T) {
				tr := NewTracker(VKFn, VKOEM3, 0)
				tr.KeyDown(VKLShift)
				before := tr.Snapshot()

				tr.KeyDown(k)
				assert.True(t, tr.Snapshot().Mods.Has(p.bit))
				tr.KeyDown(k)
				assert.True(t, tr.Snapshot().Mods.Has(p.bit), "repeat is idempotent")
				tr.KeyUp(k)

				if p.bit == Shift {
					// Releasing either shift clears the combined bit.
					assert.Equal(t, Modifier(0), tr.Snapshot().Mods)
					return
				}
				assert.Equal(t, before, tr.Snapshot())
			})
		}
	}
}

func TestTrackerEitherVariantReleases(t *testing.T) {
	tr := NewTracker(VKFn, VKOEM3, 0)
	tr.KeyDown(VKLControl)
	tr.KeyDown(VKRControl)
	tr.KeyUp(VKRControl)
	assert.False(t, tr.Snapshot().Mods.Has(Ctrl))
}

func TestTrackerLockToggling(t *testing.T) {
	for _, initial := range []Lock{0, CapsLock | NumLock} {
		t.Run(initial.String(), func(t *testing.T) {
			tr := NewTracker(VKFn, VKOEM3, initial)
			tr.LockKeyDown(VKCapital)
			assert.NotEqual(t, initial&CapsLock, tr.Snapshot().Locks&CapsLock)
			tr.LockKeyDown(VKCapital)
			assert.Equal(t, initial, tr.Snapshot().Locks)

			tr.LockKeyDown(VKScroll)
			assert.True(t, tr.Snapshot().Locks&ScrollLock != 0)
			tr.LockKeyDown(VKA)
			assert.Equal(t, initial|ScrollLock, tr.Snapshot().Locks)
		})
	}
}

func TestTrackerSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(VKFn, VKOEM3, 0)
	snap := tr.Snapshot()
	tr.KeyDown(VKLMenu)
	assert.Equal(t, Modifier(0), snap.Mods)
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		in       string
		wantMods Modifier
		wantKey  KeyID
	}{
		{"ctrl+shift+=", Ctrl | Shift, VKOEMPlus},
		{"Ctrl+Shift+Add", Ctrl | Shift, VKAdd},
		{"alt+fn+d", Alt | Fn, VKA + 3},
		{"backtick+`", Backtick, VKOEM3},
		{"win+fn+q", Win | Fn, VKA + 16},
		{"ctrl++", Ctrl, VKOEMPlus},
		{"f1", 0, VKF1},
		{"fn+capslock", Fn, VKCapital},
		{"backtick+up", Backtick, VKUp},
		{";", 0, VKOEM1},
		{"'", 0, VKOEM7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mods, key, err := ParseChord(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMods, mods)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestParseChordErrors(t *testing.T) {
	for _, in := range []string{"", "hyper+a", "ctrl+nosuchkey"} {
		t.Run(in, func(t *testing.T) {
			_, _, err := ParseChord(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatChord(t *testing.T) {
	assert.Equal(t, "ctrl+shift+=", FormatChord(Ctrl|Shift, VKOEMPlus))
	assert.Equal(t, "F2", FormatChord(0, VKF1+1))
}

func TestInjectionGuard(t *testing.T) {
	var g InjectionGuard
	assert.False(t, g.Active())
	end := g.Begin()
	assert.True(t, g.Active())
	end()
	assert.False(t, g.Active())

	var nilGuard *InjectionGuard
	nilGuard.Begin()()
	assert.False(t, nilGuard.Active())
}
