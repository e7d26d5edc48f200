//go:build windows

package main

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type instanceLock interface {
	release()
}

// mutexLock is a named mutex; the kernel releases it when the process dies.
type mutexLock struct {
	handle windows.Handle
}

func acquireInstanceLock(appName string) (instanceLock, error) {
	name, err := windows.UTF16PtrFromString(`Local\` + appName)
	if err != nil {
		return nil, fmt.Errorf("invalid mutex name %q: %w", appName, err)
	}
	h, err := windows.CreateMutex(nil, true, name)
	if err == windows.ERROR_ALREADY_EXISTS {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, fmt.Errorf("CreateMutex %q: %w", appName, err)
	}
	return &mutexLock{handle: h}, nil
}

func (l *mutexLock) release() {
	if l.handle != 0 {
		windows.ReleaseMutex(l.handle)
		windows.CloseHandle(l.handle)
		l.handle = 0
	}
}
