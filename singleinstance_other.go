//go:build !windows

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

type instanceLock interface {
	release()
}

// pidLock is a lock file in the temp directory holding the owner's PID.
type pidLock struct {
	file *os.File
	path string
}

func acquireInstanceLock(appName string) (instanceLock, error) {
	l := &pidLock{path: filepath.Join(os.TempDir(), fmt.Sprintf("%s.lock", appName))}
	// One retry after clearing a stale lock file.
	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
		if err == nil {
			if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
				file.Close()
				os.Remove(l.path)
				return nil, fmt.Errorf("failed to write PID to lock file: %w", err)
			}
			l.file = file
			return l, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
		if pid, ok := readLockPID(l.path); ok && isProcessRunning(pid) {
			return nil, ErrAlreadyRunning
		}
		os.Remove(l.path)
	}
	return nil, ErrAlreadyRunning
}

func readLockPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid, err == nil
}

// isProcessRunning checks if a process with the given PID is running
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func (l *pidLock) release() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	os.Remove(l.path)
}
