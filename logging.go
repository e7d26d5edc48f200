package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const logsDir = "logs"

// LogManager writes structured logs to the console and a per-run file
type LogManager struct {
	logFile     *os.File
	logger      *slog.Logger
	level       *slog.LevelVar
	logFilePath string
	runID       string
}

// NewLogManager creates a new log manager with file output. When the log
// file cannot be created it logs to the console only.
func NewLogManager(verbose bool) *LogManager {
	lm := &LogManager{
		level: new(slog.LevelVar),
		runID: uuid.NewString(),
	}
	lm.SetVerbose(verbose)

	var out io.Writer = os.Stdout
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Printf("Warning: Failed to create logs directory: %v\n", err)
	} else {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		lm.logFilePath = filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", AppName, timestamp))
		f, err := os.OpenFile(lm.logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Printf("Warning: Failed to open log file: %v\n", err)
			lm.logFilePath = ""
		} else {
			lm.logFile = f
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	lm.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lm.level})).
		With("run", lm.runID)
	if lm.logFilePath != "" {
		lm.logger.Info("Log file created", "path", lm.logFilePath)
	}
	return lm
}

// Logger is the structured logger handed to the internal packages.
func (lm *LogManager) Logger() *slog.Logger {
	return lm.logger
}

// RunID identifies this process run in logs and the journal.
func (lm *LogManager) RunID() string {
	return lm.runID
}

// SetVerbose switches debug logging on or off.
func (lm *LogManager) SetVerbose(on bool) {
	if on {
		lm.level.Set(slog.LevelDebug)
	} else {
		lm.level.Set(slog.LevelInfo)
	}
}

// Verbose reports whether debug logging is on.
func (lm *LogManager) Verbose() bool {
	return lm.level.Level() <= slog.LevelDebug
}

// LogInfo logs an informational message
func (lm *LogManager) LogInfo(message string, kv ...any) {
	lm.logger.Info(message, kv...)
}

// LogError logs an error message
func (lm *LogManager) LogError(message string, err error, kv ...any) {
	lm.logger.Error(message, append([]any{"error", err}, kv...)...)
}

// LogWarning logs a warning message
func (lm *LogManager) LogWarning(message string, kv ...any) {
	lm.logger.Warn(message, kv...)
}

// GetLogFilePath returns the current log file path
func (lm *LogManager) GetLogFilePath() string {
	return lm.logFilePath
}

// Close closes the log file
func (lm *LogManager) Close() {
	if lm.logFile != nil {
		lm.LogInfo("Closing log file")
		lm.logFile.Close()
		lm.logFile = nil
	}
}

// ListLogFiles returns a list of all log files in the logs directory
func (lm *LogManager) ListLogFiles() ([]string, error) {
	return filepath.Glob(filepath.Join(logsDir, AppName+"_*.log"))
}
