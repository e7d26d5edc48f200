package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taglme/macrokeys/internal/actions"
	"github.com/taglme/macrokeys/internal/actions/desktop"
	"github.com/taglme/macrokeys/internal/dispatch"
	"github.com/taglme/macrokeys/internal/expander"
	"github.com/taglme/macrokeys/internal/hook"
	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/journal"
	"github.com/taglme/macrokeys/internal/keyboard"
	"github.com/taglme/macrokeys/internal/workerutil"
)

// Process exit codes.
const (
	exitOK        = 0
	exitDuplicate = 1
	exitConfig    = 2
	exitHook      = 3
)

// CueDenied is played when a second instance is refused.
const CueDenied = "denied"

type Service interface {
	// Run installs the hook and blocks until ctx is done or quit is
	// requested. It returns the process exit code.
	Run(ctx context.Context) int
}

func NewService(config *Config, logManager *LogManager, notificationManager *NotificationManager, audioManager *AudioManager, uiManager *UIManager) Service {
	return &service{
		config:              config,
		logManager:          logManager,
		notificationManager: notificationManager,
		audioManager:        audioManager,
		uiManager:           uiManager,
		retryManager: NewRetryManager(config.Advanced.RetryAttempts,
			time.Duration(config.Advanced.RetryDelay)*time.Second, logManager.Logger()),
		quit: make(chan struct{}),
	}
}

type service struct {
	config              *Config
	logManager          *LogManager
	notificationManager *NotificationManager
	audioManager        *AudioManager
	uiManager           *UIManager
	retryManager        *RetryManager

	engine   *dispatch.Engine
	expander *expander.Listener
	journal  *journal.Journal

	started    time.Time
	keyLog     atomic.Bool
	scrollLock atomic.Bool
	quit       chan struct{}
	quitOnce   sync.Once
}

func (s *service) logger() *slog.Logger {
	return s.logManager.Logger()
}

func (s *service) Run(ctx context.Context) int {
	s.started = time.Now()
	s.keyLog.Store(s.config.General.KeyLog)
	logger := s.logger()

	runner := workerutil.NewRunner(context.Background(), workerutil.Options{Logger: logger})

	guard := &keyboard.InjectionGuard{}
	var kb *desktop.Keyboard
	err := s.retryManager.Retry(ctx, "keyboard simulator", func() error {
		var err error
		kb, err = desktop.NewKeyboard(guard)
		return err
	})
	if err != nil {
		s.logManager.LogError("Keyboard simulator unavailable", err)
		s.notificationManager.NotifyError(fmt.Sprintf("Keyboard simulator unavailable: %v", err))
		return exitHook
	}
	shell := desktop.Shell{}

	catalog := actions.Builtins(actions.Deps{
		Pointer:  desktop.NewMouse(guard),
		Keys:     kb,
		Opener:   shell,
		Launcher: shell,
		Windows:  shell,
		Notifier: s.notificationManager,
		Sounds:   s.audioManager,
		Control:  s,
	}, actions.NewFolderStack(actions.DefaultFolderHistory))

	engine, err := s.buildEngine(catalog, runner)
	if err != nil {
		s.logManager.LogError("Invalid hotkey configuration", err)
		s.notificationManager.NotifyError(fmt.Sprintf("Invalid hotkey configuration: %v", err))
		runner.Shutdown(0)
		return exitConfig
	}
	s.engine = engine

	if s.config.Journal.Enabled {
		j, err := journal.Open(s.config.Journal.Path, logger)
		if err != nil {
			s.logManager.LogWarning("Action journal disabled", "error", err)
		} else {
			s.journal = j
		}
	}

	if s.config.Expander.Enabled {
		s.expander = expander.NewListener(expander.Options{
			Tables:             s.config.ExpanderTables(),
			Typist:             kb,
			Opener:             shell,
			Logger:             logger,
			QueueSize:          s.config.Expander.QueueSize,
			SilenceSuggestions: s.config.Expander.SilenceSuggestions,
			OnExpand: func(cmd expander.Command) {
				logger.Debug("[expander] expanded", "trigger", cmd.Trigger, "kind", cmd.Kind.String())
			},
			OnError: func(cmd expander.Command, err error) {
				s.notificationManager.NotifyErrorThrottled("expander", fmt.Sprintf("Text expansion failed: %v", err))
			},
		})
		engine.AddListener(s.expander)
		runner.Go("expander", s.expander.Run)
	}
	engine.AddListener(&keyLogListener{enabled: &s.keyLog, runner: runner, logger: logger})

	s.scrollLock.Store(hook.InitialLocks()&keyboard.ScrollLock != 0)
	filter := func(raw keyboard.RawEvent) bool {
		suppress := engine.HandleKey(raw)
		if !suppress && raw.Key == keyboard.VKScroll && raw.Transition == keyboard.Down {
			s.scrollLockToggled()
		}
		return suppress
	}

	var handle *hook.Handle
	err = s.retryManager.Retry(ctx, "keyboard hook install", func() error {
		var err error
		handle, err = hook.Install(filter, hook.Options{Logger: logger, Guard: guard})
		return err
	})
	if err != nil {
		s.logManager.LogError("Failed to install keyboard hook", err)
		s.shutdown(nil, runner)
		s.notificationManager.NotifyError(fmt.Sprintf("Keyboard hook could not be installed: %v", err))
		return exitHook
	}

	console := NewConsoleManager(s, os.Stdin, os.Stdout)
	if err := console.Start(); err != nil {
		s.logManager.LogWarning("Console unavailable", "error", err)
	}
	defer console.Stop()

	s.logManager.LogInfo("Keyboard hook installed",
		"hotkeys", engine.Registry().Len(), "suppressing", hook.Suppressing())
	s.uiManager.DisplayConsoleHelp()
	s.notificationManager.NotifyInfo(AppName, "Started, "+fmt.Sprint(engine.Registry().Len())+" hotkeys active")

	code := exitOK
	select {
	case <-ctx.Done():
		s.logManager.LogInfo("Shutdown signal received")
	case <-s.quit:
		s.logManager.LogInfo("Quit requested")
	case <-handle.Done():
		s.logManager.LogError("Keyboard hook stopped unexpectedly", hook.ErrInstall)
		code = exitHook
	}

	s.shutdown(handle, runner)
	return code
}

func (s *service) buildEngine(catalog *actions.Catalog, runner *workerutil.Runner) (*dispatch.Engine, error) {
	entries, err := BuildEntries(s.config.Hotkeys)
	if err != nil {
		return nil, err
	}
	reg, err := hotkey.NewRegistry(entries, catalog)
	if err != nil {
		return nil, err
	}
	fnKey, err := keyboard.ParseKey(s.config.General.FnKey)
	if err != nil {
		return nil, fmt.Errorf("%w: fn_key: %v", hotkey.ErrConfig, err)
	}
	chordKey, err := keyboard.ParseKey(s.config.General.ChordKey)
	if err != nil {
		return nil, fmt.Errorf("%w: chord_key: %v", hotkey.ErrConfig, err)
	}

	return dispatch.NewEngine(reg, runner, focusFunc(hook.ForegroundClass), s.logger(), dispatch.Config{
		Timeout:      s.config.DispatchTimeout(),
		FnKey:        fnKey,
		ChordKey:     chordKey,
		InitialLocks: hook.InitialLocks(),
		SuppressAll:  s.config.General.SuppressAll,
		OnAction:     s.onAction,
	}), nil
}

// shutdown uninstalls the hook first so no new work arrives, then drains.
func (s *service) shutdown(handle *hook.Handle, runner *workerutil.Runner) {
	if handle != nil {
		if err := handle.Close(); err != nil {
			s.logManager.LogWarning("Keyboard hook did not stop cleanly", "error", err)
		}
	}
	if !runner.Shutdown(s.config.ShutdownGrace()) {
		s.logManager.LogWarning("Exiting with actions still running", "outstanding", runner.Running())
	}
	if s.journal != nil {
		s.journal.Stop()
		if rows, err := s.journal.Summarize(s.logManager.RunID()); err == nil {
			s.uiManager.DisplayJournalSummary(rows)
		}
		if err := s.journal.Close(); err != nil {
			s.logManager.LogWarning("Failed to close action journal", "error", err)
		}
	}
	s.logManager.LogInfo("Service stopped")
}

func (s *service) onAction(r dispatch.ActionReport) {
	var errText string
	if r.Err != nil {
		errText = r.Err.Error()
		s.notificationManager.NotifyErrorThrottled("action:"+r.Entry.Action.Name,
			fmt.Sprintf("%s (%s) failed: %v", r.Entry.Action.Name, r.Entry.Chord(), r.Err))
		if errors.Is(r.Err, actions.ErrUnavailable) {
			s.logManager.LogWarning("Action backend missing", "action", r.Entry.Action.Name)
		}
	}
	if s.journal != nil {
		s.journal.Add(journal.Record{
			RunID:    s.logManager.RunID(),
			Action:   r.Entry.Action.Name,
			Chord:    r.Entry.Chord(),
			Started:  r.Started,
			Duration: r.Elapsed,
			Err:      errText,
		})
	}
}

func (s *service) scrollLockToggled() {
	if s.scrollLock.Load() {
		s.scrollLock.Store(false)
		s.audioManager.Play(actions.CueOff)
	} else {
		s.scrollLock.Store(true)
		s.audioManager.Play(actions.CueOn)
	}
}

func (s *service) status() UIStatus {
	st := UIStatus{
		Status:      "Running",
		Started:     s.started,
		KeyLog:      s.keyLog.Load(),
		Suppressing: hook.Suppressing(),
		LogFilePath: s.logManager.GetLogFilePath(),
	}
	if s.engine != nil {
		st.SuppressAll = s.engine.SuppressAll()
		st.Hotkeys = s.engine.Registry().Len()
		st.Stats = s.engine.Stats()
	}
	if s.expander != nil {
		st.ExpanderDropped = s.expander.Dropped()
	}
	if s.journal != nil {
		st.JournalDropped = s.journal.Dropped()
	}
	return st
}

// Control surface shared by actions and the console.

func (s *service) ToggleSuppressAll() bool {
	on := s.engine.ToggleSuppressAll()
	s.logManager.LogInfo("Suppress all toggled", "on", on)
	return on
}

func (s *service) ToggleKeyLog() bool {
	on := !s.keyLog.Load()
	s.keyLog.Store(on)
	s.logManager.LogInfo("Key log toggled", "on", on)
	return on
}

func (s *service) ToggleVerbose() bool {
	on := !s.logManager.Verbose()
	s.logManager.SetVerbose(on)
	return on
}

func (s *service) Status() string {
	return s.status().Summary()
}

func (s *service) ShowStatus() {
	s.uiManager.DisplayCurrentStatus(s.status())
}

func (s *service) ListHotkeys() {
	s.uiManager.DisplayHotkeys(s.engine.Registry().Entries())
}

func (s *service) ShowLogs() {
	s.uiManager.DisplayLogAccessInfo(s.logManager)
}

func (s *service) Quit() {
	s.quitOnce.Do(func() { close(s.quit) })
}

type focusFunc func() string

func (f focusFunc) ForegroundClass() string { return f() }

// keyLogListener logs every key-down while key logging is on.
type keyLogListener struct {
	enabled *atomic.Bool
	runner  *workerutil.Runner
	logger  *slog.Logger
}

func (l *keyLogListener) Name() string { return "keylog" }

func (l *keyLogListener) Notify(ev keyboard.Event, st keyboard.State) {
	if !l.enabled.Load() {
		return
	}
	l.runner.Go("keylog", func(context.Context) error {
		l.logger.Info("[keylog]", "event", ev.String(), "mods", st.Mods.String(), "locks", st.Locks.String())
		return nil
	})
}
