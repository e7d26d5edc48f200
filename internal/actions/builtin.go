package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/keyboard"
)

// ErrUnavailable is returned by handlers whose backend is not configured.
var ErrUnavailable = errors.New("backend unavailable")

// Audio cue names played by the toggle actions.
const (
	CueOn  = "on"
	CueOff = "off"
)

// AltScrollFactor multiplies scroll amounts while Alt is held.
const AltScrollFactor = 3

type builtins struct {
	deps     Deps
	folders  *FolderStack
	throttle *Throttle

	mu   sync.Mutex
	held string
}

// Builtins returns a catalog with every built-in action bound to deps.
func Builtins(deps Deps, folders *FolderStack) *Catalog {
	if folders == nil {
		folders = NewFolderStack(DefaultFolderHistory)
	}
	b := &builtins{deps: deps, folders: folders, throttle: NewThrottle()}
	c := NewCatalog()

	for name, key := range map[string]string{
		"volume_up":        "audio_vol_up",
		"volume_down":      "audio_vol_down",
		"volume_mute":      "audio_mute",
		"media_play_pause": "audio_play",
		"media_next":       "audio_next",
		"media_prev":       "audio_prev",
	} {
		c.Register(name, "", b.tap(key))
	}

	c.Register("scroll", "scroll(amount, axis v|h)", b.scroll)
	c.Register("move_cursor", "move_cursor(dx, dy)", b.moveCursor)
	c.Register("click", "click(button)", b.click)
	c.Register("hold_click", "hold_click(button)", b.holdClick)
	c.Register("hotkey", "hotkey(chord, throttle_ms)", b.chord)
	c.Register("key", "key(name, times)", b.key)
	c.Register("type", "type(text)", b.typeText)
	c.Register("open", "open(target)", b.open)
	c.Register("run", "run(path, args...)", b.run)
	c.Register("notify", "notify(title, message)", b.notify)
	c.Register("remember_folder", "", b.rememberFolder)
	c.Register("reopen_folder", "", b.reopenFolder)
	c.Register("toggle_suppress_all", "", b.toggleSuppressAll)
	c.Register("toggle_key_log", "", b.toggleKeyLog)
	c.Register("toggle_scroll_lock", "", b.toggleScrollLock)
	c.Register("status", "", b.status)
	c.Register("list_hotkeys", "", b.listHotkeys)
	c.Register("play_sound", "play_sound(cue)", b.playSound)
	c.Register("quit", "", b.quit)
	return c
}

func (b *builtins) tap(key string) hotkey.Handler {
	return func(_ context.Context, _ hotkey.Invocation) error {
		if b.deps.Keys == nil {
			return fmt.Errorf("tap %s: %w", key, ErrUnavailable)
		}
		return b.deps.Keys.Tap(key)
	}
}

func (b *builtins) scroll(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Pointer == nil {
		return fmt.Errorf("scroll: %w", ErrUnavailable)
	}
	amount, err := inv.Args.Int(0, 1)
	if err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if inv.State.Mods.Has(keyboard.Alt) {
		amount *= AltScrollFactor
	}
	switch axis := inv.Args.String(1, "v"); axis {
	case "v", "vertical":
		return b.deps.Pointer.Scroll(0, amount)
	case "h", "horizontal":
		return b.deps.Pointer.Scroll(amount, 0)
	default:
		return fmt.Errorf("scroll: unknown axis %q", axis)
	}
}

func (b *builtins) moveCursor(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Pointer == nil {
		return fmt.Errorf("move cursor: %w", ErrUnavailable)
	}
	dx, err := inv.Args.Int(0, 0)
	if err != nil {
		return fmt.Errorf("move cursor: %w", err)
	}
	dy, err := inv.Args.Int(1, 0)
	if err != nil {
		return fmt.Errorf("move cursor: %w", err)
	}
	return b.deps.Pointer.MoveRelative(dx, dy)
}

// click releases a held button before clicking.
func (b *builtins) click(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Pointer == nil {
		return fmt.Errorf("click: %w", ErrUnavailable)
	}
	button := inv.Args.String(0, "left")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.held != "" {
		if err := b.deps.Pointer.Toggle(b.held, false); err != nil {
			return fmt.Errorf("release %s: %w", b.held, err)
		}
		b.held = ""
	}
	return b.deps.Pointer.Click(button)
}

func (b *builtins) holdClick(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Pointer == nil {
		return fmt.Errorf("hold click: %w", ErrUnavailable)
	}
	button := inv.Args.String(0, "left")

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.held != "" {
		prev := b.held
		if err := b.deps.Pointer.Toggle(prev, false); err != nil {
			return fmt.Errorf("release %s: %w", prev, err)
		}
		b.held = ""
		if prev == button {
			return nil
		}
	}
	if err := b.deps.Pointer.Toggle(button, true); err != nil {
		return fmt.Errorf("press %s: %w", button, err)
	}
	b.held = button
	return nil
}

// SplitChord turns "ctrl+shift+z" into the robotgo key and modifiers.
func SplitChord(chord string) (string, []string, error) {
	orig := chord
	chord = strings.ToLower(strings.TrimSpace(chord))
	if chord == "" {
		return "", nil, errors.New("empty chord")
	}
	key := ""
	if strings.HasSuffix(chord, "++") {
		key = "+"
		chord = strings.TrimSuffix(chord, "++")
	} else if i := strings.LastIndex(chord, "+"); i >= 0 {
		key = chord[i+1:]
		chord = chord[:i]
	} else {
		key, chord = chord, ""
	}
	if key == "" {
		return "", nil, fmt.Errorf("chord %q has no key", orig)
	}

	var mods []string
	if chord != "" {
		for _, part := range strings.Split(chord, "+") {
			switch part {
			case "ctrl", "control":
				mods = append(mods, "ctrl")
			case "shift":
				mods = append(mods, "shift")
			case "alt":
				mods = append(mods, "alt")
			case "win", "cmd", "super":
				mods = append(mods, "cmd")
			default:
				return "", nil, fmt.Errorf("chord: unknown modifier %q", part)
			}
		}
	}
	return key, mods, nil
}

// chord simulates a key combination. A second argument in milliseconds
// drops repeats arriving sooner than that.
func (b *builtins) chord(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Keys == nil {
		return fmt.Errorf("hotkey: %w", ErrUnavailable)
	}
	spec := inv.Args.String(0, "")
	key, mods, err := SplitChord(spec)
	if err != nil {
		return fmt.Errorf("hotkey: %w", err)
	}
	ms, err := inv.Args.Int(1, 0)
	if err != nil {
		return fmt.Errorf("hotkey %s: %w", spec, err)
	}
	if !b.throttle.Allow(spec, time.Duration(ms)*time.Millisecond) {
		return nil
	}
	return b.deps.Keys.Tap(key, mods...)
}

func (b *builtins) key(ctx context.Context, inv hotkey.Invocation) error {
	if b.deps.Keys == nil {
		return fmt.Errorf("key: %w", ErrUnavailable)
	}
	name := inv.Args.String(0, "")
	if name == "" {
		return errors.New("key: missing key name")
	}
	times, err := inv.Args.Int(1, 1)
	if err != nil {
		return fmt.Errorf("key %s: %w", name, err)
	}
	for i := 0; i < times; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.deps.Keys.Tap(name); err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
	}
	return nil
}

func (b *builtins) typeText(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Keys == nil {
		return fmt.Errorf("type: %w", ErrUnavailable)
	}
	return b.deps.Keys.Type(inv.Args.String(0, ""))
}

func (b *builtins) open(_ context.Context, inv hotkey.Invocation) error {
	target := inv.Args.String(0, "")
	if target == "" {
		return errors.New("open: missing target")
	}
	if b.deps.Opener == nil {
		return fmt.Errorf("open: %w", ErrUnavailable)
	}
	return b.deps.Opener.Open(target)
}

func (b *builtins) run(_ context.Context, inv hotkey.Invocation) error {
	path := inv.Args.String(0, "")
	if path == "" {
		return errors.New("run: missing program")
	}
	if b.deps.Launcher == nil {
		return fmt.Errorf("run: %w", ErrUnavailable)
	}
	return b.deps.Launcher.Start(path, inv.Args[1:]...)
}

func (b *builtins) notify(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Notifier == nil {
		return fmt.Errorf("notify: %w", ErrUnavailable)
	}
	b.deps.Notifier.NotifyInfo(inv.Args.String(0, "macrokeys"), inv.Args.String(1, ""))
	return nil
}

func (b *builtins) rememberFolder(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Windows == nil {
		return fmt.Errorf("remember folder: %w", ErrUnavailable)
	}
	path, err := b.deps.Windows.ActiveFolder()
	if err != nil {
		return fmt.Errorf("remember folder: %w", err)
	}
	b.folders.Push(path)
	return nil
}

func (b *builtins) reopenFolder(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Opener == nil {
		return fmt.Errorf("reopen folder: %w", ErrUnavailable)
	}
	path, ok := b.folders.Pop()
	if !ok {
		b.info("Reopen folder", "No recently closed folders")
		return nil
	}
	if err := b.deps.Opener.Open(path); err != nil {
		return fmt.Errorf("reopen %s: %w", path, err)
	}
	return nil
}

func (b *builtins) toggleSuppressAll(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Control == nil {
		return fmt.Errorf("toggle suppress all: %w", ErrUnavailable)
	}
	b.announce("Suppress all keys", b.deps.Control.ToggleSuppressAll())
	return nil
}

func (b *builtins) toggleKeyLog(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Control == nil {
		return fmt.Errorf("toggle key log: %w", ErrUnavailable)
	}
	b.announce("Key log", b.deps.Control.ToggleKeyLog())
	return nil
}

func (b *builtins) toggleScrollLock(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Keys == nil {
		return fmt.Errorf("toggle scroll lock: %w", ErrUnavailable)
	}
	return b.deps.Keys.ToggleScrollLock()
}

func (b *builtins) status(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Control == nil {
		return fmt.Errorf("status: %w", ErrUnavailable)
	}
	b.info("macrokeys", b.deps.Control.Status())
	return nil
}

func (b *builtins) listHotkeys(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Control == nil {
		return fmt.Errorf("list hotkeys: %w", ErrUnavailable)
	}
	b.deps.Control.ListHotkeys()
	return nil
}

func (b *builtins) playSound(_ context.Context, inv hotkey.Invocation) error {
	if b.deps.Sounds == nil {
		return fmt.Errorf("play sound: %w", ErrUnavailable)
	}
	b.deps.Sounds.Play(inv.Args.String(0, CueOn))
	return nil
}

func (b *builtins) quit(_ context.Context, _ hotkey.Invocation) error {
	if b.deps.Control == nil {
		return fmt.Errorf("quit: %w", ErrUnavailable)
	}
	b.deps.Control.Quit()
	return nil
}

func (b *builtins) announce(what string, on bool) {
	state, cue := "off", CueOff
	if on {
		state, cue = "on", CueOn
	}
	b.info(what, "Turned "+state)
	if b.deps.Sounds != nil {
		b.deps.Sounds.Play(cue)
	}
}

func (b *builtins) info(title, msg string) {
	if b.deps.Notifier != nil {
		b.deps.Notifier.NotifyInfo(title, msg)
	}
}
