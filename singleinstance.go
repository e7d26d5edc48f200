package main

import "errors"

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// SingleInstance prevents two copies of the hook from running at once
type SingleInstance struct {
	name string
	lock instanceLock
}

// NewSingleInstance creates a new SingleInstance manager
func NewSingleInstance(appName string) *SingleInstance {
	return &SingleInstance{name: appName}
}

// TryLock acquires the instance lock. It returns ErrAlreadyRunning when
// another live process holds it.
func (si *SingleInstance) TryLock() error {
	l, err := acquireInstanceLock(si.name)
	if err != nil {
		return err
	}
	si.lock = l
	return nil
}

// Release releases the lock when the application is shutting down
func (si *SingleInstance) Release() {
	if si.lock != nil {
		si.lock.release()
		si.lock = nil
	}
}
