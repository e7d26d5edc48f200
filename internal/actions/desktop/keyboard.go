// Package desktop implements the action backends on top of robotgo and
// keybd_event.
package desktop

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/micmonay/keybd_event"

	"github.com/taglme/macrokeys/internal/keyboard"
)

// injectionSettle is how long events are still attributed to synthetic
// input after a send returns.
const injectionSettle = 50 * time.Millisecond

// Keyboard sends synthetic keys. It implements actions.Keys and
// expander.Typist.
type Keyboard struct {
	mu    sync.Mutex
	kb    keybd_event.KeyBonding
	guard *keyboard.InjectionGuard
}

// NewKeyboard creates the key bonding. On Linux the uinput device needs a
// moment before the first event is accepted.
func NewKeyboard(guard *keyboard.InjectionGuard) (*Keyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
	return &Keyboard{kb: kb, guard: guard}, nil
}

func (k *Keyboard) begin() func() {
	end := k.guard.Begin()
	return func() { time.AfterFunc(injectionSettle, end) }
}

func (k *Keyboard) press(code, n int) error {
	if n <= 0 {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	defer k.begin()()

	k.kb.Clear()
	k.kb.SetKeys(code)
	for i := 0; i < n; i++ {
		if err := k.kb.Launching(); err != nil {
			return err
		}
	}
	return nil
}

// Backspace erases n characters before the caret.
func (k *Keyboard) Backspace(n int) error {
	if err := k.press(codeBackspace, n); err != nil {
		return fmt.Errorf("backspace: %w", err)
	}
	return nil
}

// Left moves the caret n characters left.
func (k *Keyboard) Left(n int) error {
	if err := k.press(codeLeft, n); err != nil {
		return fmt.Errorf("left: %w", err)
	}
	return nil
}

// ToggleScrollLock taps the scroll lock key.
func (k *Keyboard) ToggleScrollLock() error {
	if codeScrollLock == 0 {
		return fmt.Errorf("scroll lock: not supported on %s", runtime.GOOS)
	}
	if err := k.press(codeScrollLock, 1); err != nil {
		return fmt.Errorf("scroll lock: %w", err)
	}
	return nil
}

// Type writes text. Newlines are sent as Enter so editors see a real line
// break rather than a control character.
func (k *Keyboard) Type(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	defer k.begin()()

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if err := robotgo.KeyTap("enter"); err != nil {
				return fmt.Errorf("type newline: %w", err)
			}
		}
		if line != "" {
			robotgo.TypeStr(line)
		}
	}
	return nil
}

// Tap presses key with the given modifiers held.
func (k *Keyboard) Tap(key string, mods ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	defer k.begin()()

	args := make([]interface{}, len(mods))
	for i, m := range mods {
		args[i] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("tap %s: %w", key, err)
	}
	return nil
}
