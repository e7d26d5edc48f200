package desktop

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/taglme/macrokeys/internal/keyboard"
)

// Mouse implements actions.Pointer with robotgo.
type Mouse struct {
	guard *keyboard.InjectionGuard
}

// NewMouse returns a mouse backend.
func NewMouse(guard *keyboard.InjectionGuard) *Mouse {
	return &Mouse{guard: guard}
}

func (m *Mouse) begin() func() {
	end := m.guard.Begin()
	return func() { time.AfterFunc(injectionSettle, end) }
}

// Scroll scrolls by dx columns and dy lines; positive dy is up.
func (m *Mouse) Scroll(dx, dy int) error {
	defer m.begin()()
	robotgo.Scroll(dx, dy)
	return nil
}

// MoveRelative moves the cursor by dx, dy pixels.
func (m *Mouse) MoveRelative(dx, dy int) error {
	defer m.begin()()
	robotgo.MoveRelative(dx, dy)
	return nil
}

// Click clicks button once.
func (m *Mouse) Click(button string) error {
	defer m.begin()()
	robotgo.Click(button, false)
	return nil
}

// Toggle presses or releases button.
func (m *Mouse) Toggle(button string, down bool) error {
	defer m.begin()()
	dir := "up"
	if down {
		dir = "down"
	}
	if err := robotgo.Toggle(button, dir); err != nil {
		return fmt.Errorf("toggle %s %s: %w", button, dir, err)
	}
	return nil
}
