package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/taglme/macrokeys/internal/actions"
)

// NotificationManager handles system notifications
type NotificationManager struct {
	enabled       bool
	showErrors    bool
	errorInterval time.Duration
	throttle      *actions.Throttle
	logger        *slog.Logger
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(config *Config, logger *slog.Logger) *NotificationManager {
	return &NotificationManager{
		enabled:       config.Notifications.Enabled,
		showErrors:    config.Notifications.ShowErrors,
		errorInterval: time.Duration(config.Notifications.ErrorThrottle) * time.Second,
		throttle:      actions.NewThrottle(),
		logger:        logger,
	}
}

// NotifyError sends an error notification
func (nm *NotificationManager) NotifyError(message string) {
	if !nm.enabled || !nm.showErrors {
		return
	}

	if err := beeep.Alert(AppName+" error", message, ""); err != nil {
		nm.logger.Warn("Failed to send error notification", "error", err)
	}
}

// NotifyErrorThrottled sends an error notification unless one with the same
// key was sent within the configured interval.
func (nm *NotificationManager) NotifyErrorThrottled(key, message string) {
	if !nm.throttle.Allow(key, nm.errorInterval) {
		return
	}
	nm.NotifyError(message)
}

// NotifyInfo sends an informational notification
func (nm *NotificationManager) NotifyInfo(title, message string) {
	if !nm.enabled {
		return
	}

	if err := beeep.Notify(title, message, ""); err != nil {
		nm.logger.Warn("Failed to send info notification", "error", err)
	}
}

// RetryManager handles retry logic with linear backoff
type RetryManager struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewRetryManager creates a new retry manager
func NewRetryManager(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *RetryManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryManager{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// Retry executes the given function with retry logic
func (rm *RetryManager) Retry(ctx context.Context, what string, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= rm.maxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt < rm.maxAttempts {
			delay := time.Duration(attempt) * rm.baseDelay
			rm.logger.Warn("Attempt failed, retrying", "op", what, "attempt", attempt, "error", err, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", what, rm.maxAttempts, lastErr)
}

// SafeExit prints message, raises it as a notification and exits.
func SafeExit(code int, message string, notificationManager *NotificationManager) {
	if message != "" {
		fmt.Fprintln(os.Stderr, message)
		if notificationManager != nil {
			notificationManager.NotifyError(message)
		}
	}
	os.Exit(code)
}
