package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// consoleTarget is what console commands act on.
type consoleTarget interface {
	Quit()
	ShowStatus()
	ListHotkeys()
	ShowLogs()
	ToggleVerbose() bool
	ToggleSuppressAll() bool
	ToggleKeyLog() bool
}

// ConsoleManager reads commands typed into the terminal
type ConsoleManager struct {
	target     consoleTarget
	in         io.Reader
	out        io.Writer
	stopCtx    context.Context
	stopCancel context.CancelFunc
	mu         sync.Mutex
	running    bool
}

// NewConsoleManager creates a console reading commands from in
func NewConsoleManager(target consoleTarget, in io.Reader, out io.Writer) *ConsoleManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ConsoleManager{
		target:     target,
		in:         in,
		out:        out,
		stopCtx:    ctx,
		stopCancel: cancel,
	}
}

// Start begins reading commands
func (cm *ConsoleManager) Start() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.running {
		return fmt.Errorf("console already running")
	}

	go cm.monitorCommands()
	cm.running = true
	return nil
}

// Stop stops acting on commands. A read already blocked on the terminal
// stays blocked until the process exits.
func (cm *ConsoleManager) Stop() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.running {
		return
	}

	cm.stopCancel()
	cm.running = false
}

func (cm *ConsoleManager) monitorCommands() {
	scanner := bufio.NewScanner(cm.in)
	for scanner.Scan() {
		if cm.stopCtx.Err() != nil {
			return
		}
		cm.handleCommand(scanner.Text())
	}
}

// handleCommand runs one command line and reports whether it was known.
func (cm *ConsoleManager) handleCommand(line string) bool {
	onOff := func(what string, on bool) {
		state := "off"
		if on {
			state = "on"
		}
		fmt.Fprintf(cm.out, "%s %s\n", what, state)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return true
	case "quit", "q", "exit":
		cm.target.Quit()
	case "status", "s":
		cm.target.ShowStatus()
	case "list", "l", "hotkeys":
		cm.target.ListHotkeys()
	case "logs":
		cm.target.ShowLogs()
	case "verbose", "v":
		onOff("Verbose logging", cm.target.ToggleVerbose())
	case "suppress":
		onOff("Suppress all keys", cm.target.ToggleSuppressAll())
	case "keylog":
		onOff("Key log", cm.target.ToggleKeyLog())
	case "help", "h", "?":
		NewUIManager(cm.out).DisplayConsoleHelp()
	default:
		fmt.Fprintf(cm.out, "Unknown command %q, type help for the list\n", strings.TrimSpace(line))
		return false
	}
	return true
}
