package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taglme/macrokeys/internal/actions"
	"github.com/taglme/macrokeys/internal/dispatch"
	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/journal"
)

func TestDisplayHotkeysGroupsByTier(t *testing.T) {
	entries, err := BuildEntries([]HotkeyConfig{
		{Keys: "ctrl+w", Tier: "focus", Classes: []string{"CabinetWClass"}, IncludeDesktop: true, PassThrough: true, Action: "remember_folder"},
		{Keys: "w", Tier: "lock", Action: "scroll", Args: []string{"1"}},
		{Keys: "ctrl+shift+=", Action: "volume_up"},
	})
	require.NoError(t, err)
	reg, err := hotkey.NewRegistry(entries, actions.Builtins(actions.Deps{}, nil))
	require.NoError(t, err)

	var out bytes.Buffer
	NewUIManager(&out).DisplayHotkeys(reg.Entries())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "TIER"))
	assert.Contains(t, lines[1], "volume_up")
	assert.Contains(t, lines[2], "scroll(1)")
	assert.Contains(t, lines[2], "scroll lock on")
	assert.Contains(t, lines[3], "window CabinetWClass|desktop, key passes")
}

func TestStatusSummaryAndBox(t *testing.T) {
	st := UIStatus{
		Status:      "Running",
		Started:     time.Now().Add(-90 * time.Second),
		Hotkeys:     42,
		SuppressAll: true,
		Stats:       dispatch.Stats{Events: 10, Matched: 3, Timeouts: 1},
		LogFilePath: "logs/macrokeys_x.log",
	}
	assert.Contains(t, st.Summary(), "Still running (up 1m30s), 42 hotkeys, 10 keys seen, 3 matched")

	var out bytes.Buffer
	NewUIManager(&out).DisplayCurrentStatus(st)
	text := out.String()
	assert.Contains(t, text, "Suppress all: ON")
	assert.Contains(t, text, "observe only")
	assert.Contains(t, text, "1 timeouts")
	assert.Contains(t, text, "macrokeys_x.log")
}

func TestDisplayJournalSummary(t *testing.T) {
	var out bytes.Buffer
	ui := NewUIManager(&out)
	ui.DisplayJournalSummary(nil)
	assert.Empty(t, out.String())

	ui.DisplayJournalSummary([]journal.Summary{{Action: "scroll", Runs: 12, Failures: 1}})
	assert.Contains(t, out.String(), "Actions this run:")
	assert.Contains(t, out.String(), "12 runs")
}
