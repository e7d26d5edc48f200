package actions

// Pointer drives the mouse. Positive dy scrolls up, positive dx right.
type Pointer interface {
	Scroll(dx, dy int) error
	MoveRelative(dx, dy int) error
	Click(button string) error
	Toggle(button string, down bool) error
}

// Keys sends synthetic key presses. Names follow robotgo ("z", "f5",
// "audio_vol_up"); modifiers are "ctrl", "shift", "alt" and "cmd".
type Keys interface {
	Tap(key string, mods ...string) error
	Type(text string) error
	ToggleScrollLock() error
}

// Opener opens files, folders and URLs with the default handler.
type Opener interface {
	Open(target string) error
}

// Launcher starts helper programs without waiting for them.
type Launcher interface {
	Start(path string, args ...string) error
}

// Windows answers questions about the foreground window.
type Windows interface {
	// ActiveFolder is the folder shown by the foreground file-manager
	// window, or an error wrapping ErrFolderUnknown.
	ActiveFolder() (string, error)
}

// Notifier shows desktop notifications.
type Notifier interface {
	NotifyInfo(title, message string)
}

// Sounds plays named audio cues.
type Sounds interface {
	Play(cue string)
}

// Control is the part of the running service actions may steer.
type Control interface {
	ToggleSuppressAll() bool
	ToggleKeyLog() bool
	Status() string
	ListHotkeys()
	Quit()
}

// Deps are the backends Builtins binds handlers to. Nil backends make the
// handlers that need them fail with ErrUnavailable.
type Deps struct {
	Pointer  Pointer
	Keys     Keys
	Opener   Opener
	Launcher Launcher
	Windows  Windows
	Notifier Notifier
	Sounds   Sounds
	Control  Control
}
