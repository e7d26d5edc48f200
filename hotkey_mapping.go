package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/keyboard"
)

// BuildEntries converts configured hotkeys into registry entries. Every bad
// hotkey is reported, not just the first.
func BuildEntries(configs []HotkeyConfig) ([]hotkey.Entry, error) {
	entries := make([]hotkey.Entry, 0, len(configs))
	var errs []error

	for i, hc := range configs {
		e, err := buildEntry(hc)
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey %d (%q): %w", i+1, hc.Keys, err))
			continue
		}
		entries = append(entries, e)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", hotkey.ErrConfig, errors.Join(errs...))
	}
	return entries, nil
}

func buildEntry(hc HotkeyConfig) (hotkey.Entry, error) {
	var e hotkey.Entry
	if strings.TrimSpace(hc.Action) == "" {
		return e, errors.New("no action")
	}
	mods, key, err := keyboard.ParseChord(hc.Keys)
	if err != nil {
		return e, err
	}
	tier, err := hotkey.ParseTier(hc.Tier)
	if err != nil {
		return e, err
	}
	match, err := parseMatch(hc.Match)
	if err != nil {
		return e, err
	}
	var lock keyboard.Lock
	if tier == hotkey.LockGated {
		if lock, err = parseLock(hc.Lock); err != nil {
			return e, err
		}
	} else if hc.Lock != "" {
		return e, fmt.Errorf("lock %q set on a %s hotkey", hc.Lock, tier)
	}
	if tier != hotkey.FocusGated && (len(hc.Classes) > 0 || hc.IncludeDesktop || hc.SuppressOnMiss) {
		return e, fmt.Errorf("window rule set on a %s hotkey", tier)
	}

	e = hotkey.Entry{
		Tier:  tier,
		Mods:  mods,
		Key:   key,
		Match: match,
		Lock:  lock,
		Focus: hotkey.FocusRule{
			Classes:        hc.Classes,
			IncludeDesktop: hc.IncludeDesktop,
			SuppressOnMiss: hc.SuppressOnMiss,
		},
		PassThrough: hc.PassThrough,
		Action:      hotkey.Action{Name: strings.TrimSpace(hc.Action), Args: hc.Args},
	}
	return e, nil
}

func parseMatch(s string) (hotkey.Match, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return hotkey.Exact, nil
	case "at_least", "atleast", "superset":
		return hotkey.AtLeast, nil
	}
	return 0, fmt.Errorf("unknown match %q (want exact or at_least)", s)
}

func parseLock(s string) (keyboard.Lock, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scroll", "scroll_lock", "scrolllock":
		return keyboard.ScrollLock, nil
	case "caps", "caps_lock", "capslock":
		return keyboard.CapsLock, nil
	case "num", "num_lock", "numlock":
		return keyboard.NumLock, nil
	}
	return 0, fmt.Errorf("unknown lock %q (want scroll, caps or num)", s)
}
