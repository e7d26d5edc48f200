package desktop

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-vgo/robotgo"
	"github.com/skratchdot/open-golang/open"

	"github.com/taglme/macrokeys/internal/actions"
)

// Shell opens locations, starts programs and reads the foreground window.
// It implements actions.Opener, actions.Launcher and actions.Windows.
type Shell struct{}

// Open opens target with its default handler.
func (Shell) Open(target string) error {
	err := open.Start(target)
	if err == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		if ferr := exec.Command("cmd", "/c", "start", "", target).Start(); ferr == nil {
			return nil
		}
	}
	return fmt.Errorf("open %s: %w", target, err)
}

// Start launches a program without waiting for it to exit.
func (Shell) Start(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	go cmd.Wait()
	return nil
}

// ActiveFolder resolves the foreground window title to a folder. Explorer
// shows only the folder name unless "full path in title bar" is on, so
// bare names are looked up under the user profile.
func (Shell) ActiveFolder() (string, error) {
	return actions.FolderFromTitle(robotgo.GetTitle(), folderRoots())
}

func folderRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	roots := []string{home}
	for _, dir := range []string{"Desktop", "Documents", "Downloads", "Music", "Pictures", "Videos"} {
		roots = append(roots, filepath.Join(home, dir))
	}
	return roots
}
