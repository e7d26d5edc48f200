package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taglme/macrokeys/internal/actions"
	"github.com/taglme/macrokeys/internal/hotkey"
)

func main() {
	uiManager := NewUIManager(os.Stdout)
	uiManager.DisplayBanner()

	// Load configuration
	config, flags, err := LoadConfig(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		// The configuration is unusable, so alerts use the defaults.
		SafeExit(exitConfig, fmt.Sprintf("Failed to load configuration: %v", err),
			NewNotificationManager(DefaultConfig(), slog.Default()))
	}

	if flags.PrintHotkeys {
		os.Exit(printHotkeys(config, uiManager))
	}

	logManager := NewLogManager(config.General.Verbose)
	notificationManager := NewNotificationManager(config, logManager.Logger())
	audioManager := NewAudioManager(config, logManager.Logger())

	instance := NewSingleInstance(AppName)
	if err := instance.TryLock(); err != nil {
		logManager.LogWarning("Refusing to start", "error", err)
		audioManager.PlayWait(CueDenied)
		logManager.Close()
		if errors.Is(err, ErrAlreadyRunning) {
			SafeExit(exitDuplicate, fmt.Sprintf("%s is already running", AppName), notificationManager)
		}
		SafeExit(exitDuplicate, fmt.Sprintf("Failed to acquire instance lock: %v", err), notificationManager)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	service := NewService(config, logManager, notificationManager, audioManager, uiManager)
	code := service.Run(ctx)
	stop()

	instance.Release()
	logManager.Close()
	os.Exit(code)
}

func printHotkeys(config *Config, uiManager *UIManager) int {
	entries, err := BuildEntries(config.Hotkeys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}
	reg, err := hotkey.NewRegistry(entries, actions.Builtins(actions.Deps{}, nil))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}
	uiManager.DisplayHotkeys(reg.Entries())
	return exitOK
}
