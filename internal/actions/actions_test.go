package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/keyboard"
)

type fakeDesktop struct {
	mu        sync.Mutex
	calls     []string
	folder    string
	folderErr error
	suppress  bool
}

func (f *fakeDesktop) rec(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeDesktop) Scroll(dx, dy int) error          { return f.rec("scroll %d %d", dx, dy) }
func (f *fakeDesktop) MoveRelative(dx, dy int) error    { return f.rec("move %d %d", dx, dy) }
func (f *fakeDesktop) Click(button string) error        { return f.rec("click %s", button) }
func (f *fakeDesktop) Toggle(b string, down bool) error { return f.rec("toggle %s %t", b, down) }
func (f *fakeDesktop) Tap(key string, mods ...string) error {
	return f.rec("tap %s %s", key, strings.Join(mods, "+"))
}
func (f *fakeDesktop) Type(text string) error               { return f.rec("type %s", text) }
func (f *fakeDesktop) ToggleScrollLock() error              { return f.rec("scroll_lock") }
func (f *fakeDesktop) Open(target string) error             { return f.rec("open %s", target) }
func (f *fakeDesktop) Start(p string, args ...string) error { return f.rec("start %s %v", p, args) }
func (f *fakeDesktop) ActiveFolder() (string, error)        { return f.folder, f.folderErr }
func (f *fakeDesktop) NotifyInfo(title, msg string)         { f.rec("notify %s: %s", title, msg) }
func (f *fakeDesktop) Play(cue string)                      { f.rec("play %s", cue) }
func (f *fakeDesktop) ToggleSuppressAll() bool {
	f.suppress = !f.suppress
	return f.suppress
}
func (f *fakeDesktop) ToggleKeyLog() bool { return true }
func (f *fakeDesktop) Status() string     { return "running" }
func (f *fakeDesktop) ListHotkeys()       { f.rec("list") }
func (f *fakeDesktop) Quit()              { f.rec("quit") }

func (f *fakeDesktop) take() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.calls
	f.calls = nil
	return out
}

func newFake() (*fakeDesktop, *Catalog) {
	f := &fakeDesktop{}
	return f, Builtins(Deps{
		Pointer: f, Keys: f, Opener: f, Launcher: f, Windows: f,
		Notifier: f, Sounds: f, Control: f,
	}, nil)
}

func invoke(t *testing.T, c *Catalog, name string, mods keyboard.Modifier, args ...string) error {
	t.Helper()
	h, ok := c.Resolve(name)
	require.True(t, ok, "action %s not registered", name)
	return h(context.Background(), hotkey.Invocation{Args: args, State: keyboard.State{Mods: mods}})
}

func TestBuiltinsCoverCatalog(t *testing.T) {
	_, c := newFake()
	for _, name := range []string{
		"volume_up", "volume_down", "volume_mute", "media_play_pause", "media_next", "media_prev",
		"scroll", "move_cursor", "click", "hold_click", "hotkey", "key", "type", "open", "run",
		"notify", "remember_folder", "reopen_folder", "toggle_suppress_all", "toggle_key_log",
		"toggle_scroll_lock", "status", "list_hotkeys", "play_sound", "quit",
	} {
		_, ok := c.Resolve(name)
		assert.True(t, ok, name)
	}
	_, ok := c.Resolve("format_disk")
	assert.False(t, ok)
	assert.Len(t, c.List(), 25)
}

func TestBuiltinHandlers(t *testing.T) {
	tests := []struct {
		name   string
		action string
		mods   keyboard.Modifier
		args   []string
		want   []string
	}{
		{"volume", "volume_up", keyboard.Ctrl | keyboard.Shift, nil, []string{"tap audio_vol_up "}},
		{"scroll down", "scroll", 0, []string{"-2"}, []string{"scroll 0 -2"}},
		{"scroll alt", "scroll", keyboard.Alt, []string{"1"}, []string{"scroll 0 3"}},
		{"scroll horizontal", "scroll", 0, []string{"4", "h"}, []string{"scroll 4 0"}},
		{"move", "move_cursor", 0, []string{"-20", "0"}, []string{"move -20 0"}},
		{"chord", "hotkey", 0, []string{"Ctrl+Shift+T"}, []string{"tap t ctrl+shift"}},
		{"key repeat", "key", 0, []string{"down", "2"}, []string{"tap down ", "tap down "}},
		{"type", "type", 0, []string{"hello"}, []string{"type hello"}},
		{"run", "run", 0, []string{"calc.exe", "-x"}, []string{"start calc.exe [-x]"}},
		{"status", "status", 0, nil, []string{"notify macrokeys: running"}},
		{"suppress", "toggle_suppress_all", 0, nil, []string{"notify Suppress all keys: Turned on", "play on"}},
		{"quit", "quit", 0, nil, []string{"quit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c := newFake()
			require.NoError(t, invoke(t, c, tt.action, tt.mods, tt.args...))
			assert.Equal(t, tt.want, f.take())
		})
	}
}

func TestBuiltinArgumentErrors(t *testing.T) {
	_, c := newFake()
	assert.Error(t, invoke(t, c, "scroll", 0, "lots"))
	assert.Error(t, invoke(t, c, "scroll", 0, "1", "diagonal"))
	assert.Error(t, invoke(t, c, "hotkey", 0, "hyper+x"))
	assert.Error(t, invoke(t, c, "open", 0))
	assert.Error(t, invoke(t, c, "key", 0))
}

func TestMissingBackend(t *testing.T) {
	c := Builtins(Deps{}, nil)
	h, _ := c.Resolve("click")
	err := h(context.Background(), hotkey.Invocation{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHoldClickAndRelease(t *testing.T) {
	f, c := newFake()
	require.NoError(t, invoke(t, c, "hold_click", 0))
	require.NoError(t, invoke(t, c, "click", 0, "right"))
	assert.Equal(t, []string{"toggle left true", "toggle left false", "click right"}, f.take())

	require.NoError(t, invoke(t, c, "hold_click", 0))
	require.NoError(t, invoke(t, c, "hold_click", 0))
	assert.Equal(t, []string{"toggle left true", "toggle left false"}, f.take())
}

func TestChordThrottle(t *testing.T) {
	f, c := newFake()
	for i := 0; i < 3; i++ {
		require.NoError(t, invoke(t, c, "hotkey", 0, "ctrl+z", "60000"))
	}
	assert.Equal(t, []string{"tap z ctrl"}, f.take())
}

func TestThrottleWindow(t *testing.T) {
	th := NewThrottle()
	now := time.Unix(0, 0)
	th.now = func() time.Time { return now }
	assert.True(t, th.Allow("undo", 300*time.Millisecond))
	now = now.Add(100 * time.Millisecond)
	assert.False(t, th.Allow("undo", 300*time.Millisecond))
	assert.True(t, th.Allow("redo", 300*time.Millisecond))
	now = now.Add(300 * time.Millisecond)
	assert.True(t, th.Allow("undo", 300*time.Millisecond))
	assert.True(t, th.Allow("undo", 0))
}

func TestSplitChord(t *testing.T) {
	tests := []struct {
		in   string
		key  string
		mods []string
		ok   bool
	}{
		{"z", "z", nil, true},
		{"ctrl+z", "z", []string{"ctrl"}, true},
		{"Win+Shift+S", "s", []string{"cmd", "shift"}, true},
		{"ctrl++", "+", []string{"ctrl"}, true},
		{"", "", nil, false},
		{"ctrl+", "", nil, false},
		{"meta+x", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, mods, err := SplitChord(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.mods, mods)
		})
	}
}

func TestFolderStack(t *testing.T) {
	s := NewFolderStack(3)
	s.Push("")
	for _, p := range []string{`C:\a`, `C:\b`, `C:\a`, `C:\c`, `C:\d`} {
		s.Push(p)
	}
	assert.Equal(t, 3, s.Len())

	var got []string
	for {
		p, ok := s.Pop()
		if !ok {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, []string{`C:\d`, `C:\c`, `C:\a`}, got)
}

func TestRememberAndReopenFolder(t *testing.T) {
	f, c := newFake()
	f.folder = `C:\Users\me\Downloads`
	require.NoError(t, invoke(t, c, "remember_folder", keyboard.Ctrl))
	require.NoError(t, invoke(t, c, "reopen_folder", keyboard.Ctrl|keyboard.Shift))
	require.NoError(t, invoke(t, c, "reopen_folder", keyboard.Ctrl|keyboard.Shift))
	assert.Equal(t, []string{
		`open C:\Users\me\Downloads`,
		"notify Reopen folder: No recently closed folders",
	}, f.take())
}

func TestRememberFolderNeedsResolvedPath(t *testing.T) {
	f, c := newFake()
	f.folderErr = fmt.Errorf("%w: %q", ErrFolderUnknown, "Downloads")
	err := invoke(t, c, "remember_folder", keyboard.Ctrl)
	assert.ErrorIs(t, err, ErrFolderUnknown)

	require.NoError(t, invoke(t, c, "reopen_folder", keyboard.Ctrl|keyboard.Shift))
	assert.Equal(t, []string{"notify Reopen folder: No recently closed folders"}, f.take())
}

func TestFolderFromTitle(t *testing.T) {
	home := t.TempDir()
	downloads := filepath.Join(home, "Downloads")
	require.NoError(t, os.Mkdir(downloads, 0o755))
	project := filepath.Join(downloads, "project")
	require.NoError(t, os.Mkdir(project, 0o755))
	roots := []string{home, downloads}

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"absolute path", project, project},
		{"bare name under root", "Downloads", downloads},
		{"nested root child", "project", project},
		{"explorer suffix", "Downloads - File Explorer", downloads},
		{"root itself", filepath.Base(home), home},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FolderFromTitle(tt.title, roots)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, title := range []string{"", "Untitled - Notepad", filepath.Join(home, "missing")} {
		_, err := FolderFromTitle(title, roots)
		assert.ErrorIs(t, err, ErrFolderUnknown, "title %q", title)
	}
}
