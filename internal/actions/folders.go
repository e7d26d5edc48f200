package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFolderHistory is how many closed folders are remembered.
const DefaultFolderHistory = 20

// ErrFolderUnknown is returned when a window title names no folder on disk.
var ErrFolderUnknown = errors.New("folder not found for window title")

var explorerSuffixes = []string{" - File Explorer", " - Windows Explorer"}

// FolderFromTitle maps a file-manager window title to a folder path. Titles
// that are absolute paths are used as they are; bare folder names are
// looked up as children of roots, and a title naming a root itself
// returns that root.
func FolderFromTitle(title string, roots []string) (string, error) {
	name := strings.TrimSpace(title)
	for _, suffix := range explorerSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty title", ErrFolderUnknown)
	}
	if filepath.IsAbs(name) {
		if isDir(name) {
			return filepath.Clean(name), nil
		}
		return "", fmt.Errorf("%w: %q", ErrFolderUnknown, title)
	}
	for _, root := range roots {
		if filepath.Base(root) == name && isDir(root) {
			return root, nil
		}
		if candidate := filepath.Join(root, name); isDir(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrFolderUnknown, title)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FolderStack remembers recently closed file-manager windows, most recent
// last. Remembering a folder already on the stack moves it to the top.
type FolderStack struct {
	mu    sync.Mutex
	items []string
	max   int
}

// NewFolderStack returns a stack holding at most max folders.
func NewFolderStack(max int) *FolderStack {
	if max <= 0 {
		max = DefaultFolderHistory
	}
	return &FolderStack{max: max}
}

// Push records path. Empty paths are ignored.
func (s *FolderStack) Push(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.items {
		if p == path {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.items = append(s.items, path)
	if len(s.items) > s.max {
		s.items = s.items[len(s.items)-s.max:]
	}
}

// Pop removes and returns the most recent folder.
func (s *FolderStack) Pop() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", false
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last, true
}

// Len is the number of remembered folders.
func (s *FolderStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
