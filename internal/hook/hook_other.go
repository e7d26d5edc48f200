//go:build !windows

package hook

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-vgo/robotgo"
	gohook "github.com/robotn/gohook"

	"github.com/taglme/macrokeys/internal/keyboard"
)

var (
	runMu    sync.Mutex
	running  bool
	warnOnce sync.Once

	codesOnce sync.Once
	codes     map[uint16]keyboard.KeyID
)

// keyNames lists the gohook spellings tried for each key.
var keyNames = map[keyboard.KeyID][]string{
	keyboard.VKBack:      {"backspace"},
	keyboard.VKTab:       {"tab"},
	keyboard.VKReturn:    {"enter"},
	keyboard.VKEscape:    {"esc", "escape"},
	keyboard.VKSpace:     {"space"},
	keyboard.VKPrior:     {"pageup"},
	keyboard.VKNext:      {"pagedown"},
	keyboard.VKEnd:       {"end"},
	keyboard.VKHome:      {"home"},
	keyboard.VKLeft:      {"left"},
	keyboard.VKUp:        {"up"},
	keyboard.VKRight:     {"right"},
	keyboard.VKDown:      {"down"},
	keyboard.VKInsert:    {"insert"},
	keyboard.VKDelete:    {"delete"},
	keyboard.VKCapital:   {"capslock", "caps lock"},
	keyboard.VKScroll:    {"scrolllock", "scroll lock"},
	keyboard.VKNumLock:   {"numlock", "num lock"},
	keyboard.VKLShift:    {"shift"},
	keyboard.VKRShift:    {"rshift"},
	keyboard.VKLControl:  {"ctrl"},
	keyboard.VKRControl:  {"rctrl"},
	keyboard.VKLMenu:     {"alt"},
	keyboard.VKRMenu:     {"ralt"},
	keyboard.VKLWin:      {"cmd", "command"},
	keyboard.VKRWin:      {"rcmd"},
	keyboard.VKOEM1:      {";"},
	keyboard.VKOEMPlus:   {"="},
	keyboard.VKOEMComma:  {","},
	keyboard.VKOEMMinus:  {"-"},
	keyboard.VKOEMPeriod: {"."},
	keyboard.VKOEM2:      {"/"},
	keyboard.VKOEM3:      {"`"},
	keyboard.VKOEM4:      {"["},
	keyboard.VKOEM5:      {"\\"},
	keyboard.VKOEM6:      {"]"},
	keyboard.VKOEM7:      {"'"},
}

func keycodes() map[uint16]keyboard.KeyID {
	codesOnce.Do(func() {
		for i := keyboard.KeyID(0); i < 26; i++ {
			keyNames[keyboard.VKA+i] = []string{string(rune('a' + i))}
		}
		for i := keyboard.KeyID(0); i < 10; i++ {
			keyNames[keyboard.VK0+i] = []string{string(rune('0' + i))}
		}
		for i := keyboard.KeyID(0); i < 24; i++ {
			keyNames[keyboard.VKF1+i] = []string{fmt.Sprintf("f%d", i+1)}
		}

		codes = make(map[uint16]keyboard.KeyID, len(keyNames))
		for vk, names := range keyNames {
			for _, n := range names {
				if code, ok := gohook.Keycode[strings.ToLower(n)]; ok {
					if _, dup := codes[code]; !dup {
						codes[code] = vk
					}
					break
				}
			}
		}
	})
	return codes
}

func translate(ev gohook.Event, table map[uint16]keyboard.KeyID, guard *keyboard.InjectionGuard) (keyboard.RawEvent, bool) {
	var tr keyboard.Transition
	switch ev.Kind {
	case gohook.KeyHold:
		tr = keyboard.Down
	case gohook.KeyUp:
		tr = keyboard.Up
	default:
		return keyboard.RawEvent{}, false
	}
	key, ok := table[ev.Keycode]
	if !ok {
		return keyboard.RawEvent{}, false
	}
	raw := keyboard.RawEvent{
		Key:        key,
		ScanCode:   uint32(ev.Rawcode),
		Transition: tr,
		OSTime:     uint32(ev.When.UnixMilli()),
	}
	if guard.Active() {
		raw.Flags |= keyboard.FlagInjected
	}
	return raw, true
}

func install(filter Filter, opts Options) (*Handle, error) {
	runMu.Lock()
	if running {
		runMu.Unlock()
		return nil, fmt.Errorf("%w: a hook is already installed", ErrInstall)
	}
	running = true
	runMu.Unlock()

	warnOnce.Do(func() {
		opts.Logger.Warn("[hook] this platform cannot swallow keys; hotkeys run but the keys still reach applications")
	})

	table := keycodes()
	evChan := gohook.Start()
	if evChan == nil {
		runMu.Lock()
		running = false
		runMu.Unlock()
		return nil, fmt.Errorf("%w: gohook did not start", ErrInstall)
	}

	h := newHandle(opts.CloseTimeout)
	stop := make(chan struct{})
	h.stop = func() { close(stop) }

	go func() {
		defer close(h.done)
		defer func() {
			runMu.Lock()
			running = false
			runMu.Unlock()
		}()
		defer gohook.End()

		opts.Logger.Info("[hook] gohook event loop started", "keys", len(table))
		for {
			select {
			case <-stop:
				opts.Logger.Info("[hook] gohook event loop stopped")
				return
			case ev, ok := <-evChan:
				if !ok {
					opts.Logger.Error("[hook] event channel closed unexpectedly")
					return
				}
				if raw, ok := translate(ev, table, opts.Guard); ok {
					filter(raw)
				}
			}
		}
	}()
	return h, nil
}

// ForegroundClass returns the foreground window title; window classes are
// not exposed on this platform.
func ForegroundClass() string {
	return robotgo.GetTitle()
}

// InitialLocks is unknown on this platform; all locks start released.
func InitialLocks() keyboard.Lock {
	return 0
}

// Suppressing reports whether this backend can swallow keys.
func Suppressing() bool { return false }
