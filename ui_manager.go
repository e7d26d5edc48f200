package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/taglme/macrokeys/internal/dispatch"
	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/journal"
)

// UIStatus is a snapshot of the running daemon
type UIStatus struct {
	Status          string         `json:"status"`
	Started         time.Time      `json:"started"`
	SuppressAll     bool           `json:"suppress_all"`
	KeyLog          bool           `json:"key_log"`
	Suppressing     bool           `json:"suppressing"`
	Hotkeys         int            `json:"hotkeys"`
	Stats           dispatch.Stats `json:"stats"`
	ExpanderDropped uint64         `json:"expander_dropped"`
	JournalDropped  uint64         `json:"journal_dropped"`
	LogFilePath     string         `json:"log_file_path"`
}

// Summary is the one-line form shown by the status notification.
func (s UIStatus) Summary() string {
	return fmt.Sprintf("Still running (up %s), %d hotkeys, %d keys seen, %d matched",
		time.Since(s.Started).Round(time.Second), s.Hotkeys, s.Stats.Events, s.Stats.Matched)
}

// UIManager renders console output
type UIManager struct {
	out io.Writer
}

// NewUIManager creates a new UI manager writing to out
func NewUIManager(out io.Writer) *UIManager {
	return &UIManager{out: out}
}

// DisplayBanner prints the startup banner
func (ui *UIManager) DisplayBanner() {
	fmt.Fprintf(ui.out, "%s %s - system-wide hotkeys and text expansion\n", AppName, Version)
	fmt.Fprintln(ui.out, strings.Repeat("=", 56))
}

// DisplayCurrentStatus shows the current status in the console
func (ui *UIManager) DisplayCurrentStatus(s UIStatus) {
	onOff := func(b bool) string {
		if b {
			return "ON"
		}
		return "off"
	}
	fmt.Fprintln(ui.out)
	fmt.Fprintln(ui.out, "┌─────────────────────────────────────────────────────────┐")
	fmt.Fprintf(ui.out, "│  Status: %-46s │\n", s.Status)
	fmt.Fprintf(ui.out, "│  Uptime: %-46s │\n", time.Since(s.Started).Round(time.Second))
	fmt.Fprintf(ui.out, "│  Hotkeys: %-45d │\n", s.Hotkeys)
	fmt.Fprintf(ui.out, "│  Suppress all: %-40s │\n", onOff(s.SuppressAll))
	fmt.Fprintf(ui.out, "│  Key log: %-45s │\n", onOff(s.KeyLog))
	if !s.Suppressing {
		fmt.Fprintln(ui.out, "│  Hook: observe only, keys cannot be swallowed          │")
	}
	fmt.Fprintf(ui.out, "│  Keys: %-48s │\n", fmt.Sprintf("%d seen, %d matched, %d swallowed", s.Stats.Events, s.Stats.Matched, s.Stats.Suppressed))
	if s.Stats.Timeouts > 0 || s.ExpanderDropped > 0 || s.JournalDropped > 0 {
		fmt.Fprintf(ui.out, "│  Lost: %-48s │\n", fmt.Sprintf("%d timeouts, %d expander, %d journal",
			s.Stats.Timeouts, s.ExpanderDropped, s.JournalDropped))
	}
	fmt.Fprintf(ui.out, "│  Log File: %-44s │\n", filepath.Base(s.LogFilePath))
	fmt.Fprintln(ui.out, "└─────────────────────────────────────────────────────────┘")
	fmt.Fprintln(ui.out)
}

// DisplayHotkeys prints the hotkey table grouped by tier
func (ui *UIManager) DisplayHotkeys(entries []*hotkey.Entry) {
	tw := tabwriter.NewWriter(ui.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tKEYS\tACTION\tCONDITION")
	for _, tier := range []hotkey.Tier{hotkey.Unconditional, hotkey.LockGated, hotkey.FocusGated} {
		for _, e := range entries {
			if e.Tier != tier {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Tier, e.Chord(), e.Action, condition(e))
		}
	}
	tw.Flush()
}

func condition(e *hotkey.Entry) string {
	var parts []string
	switch e.Tier {
	case hotkey.LockGated:
		parts = append(parts, e.Lock.String()+" lock on")
	case hotkey.FocusGated:
		w := strings.Join(e.Focus.Classes, "|")
		if e.Focus.IncludeDesktop {
			w += "|desktop"
		}
		parts = append(parts, "window "+strings.TrimPrefix(w, "|"))
	}
	if e.Match == hotkey.AtLeast {
		parts = append(parts, "extra modifiers ok")
	}
	if e.PassThrough {
		parts = append(parts, "key passes")
	}
	return strings.Join(parts, ", ")
}

// DisplayJournalSummary prints per-action counts of this run
func (ui *UIManager) DisplayJournalSummary(rows []journal.Summary) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(ui.out, "Actions this run:")
	tw := tabwriter.NewWriter(ui.out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%d runs\t%d failed\n", r.Action, r.Runs, r.Failures)
	}
	tw.Flush()
}

// DisplayLogAccessInfo shows information about log file access
func (ui *UIManager) DisplayLogAccessInfo(lm *LogManager) {
	fmt.Fprintln(ui.out)
	fmt.Fprintln(ui.out, "Log File Information:")
	fmt.Fprintf(ui.out, "   Current log file: %s\n", lm.GetLogFilePath())
	fmt.Fprintf(ui.out, "   All logs are stored in the '%s' directory\n", logsDir)

	files, err := lm.ListLogFiles()
	if err == nil && len(files) > 0 {
		fmt.Fprintf(ui.out, "   Available log files (%d):\n", len(files))
		start := 0
		if len(files) > 5 {
			start = len(files) - 5
		}
		for _, f := range files[start:] {
			fmt.Fprintf(ui.out, "     - %s\n", filepath.Base(f))
		}
	}
	fmt.Fprintln(ui.out)
}

// DisplayConsoleHelp lists the console commands
func (ui *UIManager) DisplayConsoleHelp() {
	fmt.Fprintln(ui.out, "Console commands: status (s), list (l), verbose (v), suppress, keylog, logs, help (h), quit (q)")
}
