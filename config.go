package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/taglme/macrokeys/internal/actions"
	"github.com/taglme/macrokeys/internal/expander"
	"github.com/taglme/macrokeys/internal/hotkey"
	"github.com/taglme/macrokeys/internal/keyboard"
)

// HotkeyConfig is one configured hotkey.
type HotkeyConfig struct {
	Keys           string   `yaml:"keys" toml:"keys"`
	Tier           string   `yaml:"tier,omitempty" toml:"tier,omitempty"`
	Match          string   `yaml:"match,omitempty" toml:"match,omitempty"`
	Lock           string   `yaml:"lock,omitempty" toml:"lock,omitempty"`
	Classes        []string `yaml:"classes,omitempty" toml:"classes,omitempty"`
	IncludeDesktop bool     `yaml:"include_desktop,omitempty" toml:"include_desktop,omitempty"`
	SuppressOnMiss bool     `yaml:"suppress_on_miss,omitempty" toml:"suppress_on_miss,omitempty"`
	PassThrough    bool     `yaml:"pass_through,omitempty" toml:"pass_through,omitempty"`
	Action         string   `yaml:"action" toml:"action"`
	Args           []string `yaml:"args,omitempty" toml:"args,omitempty"`
}

// Config represents the complete application configuration
type Config struct {
	General struct {
		SuppressAll       bool   `yaml:"suppress_all" toml:"suppress_all"`
		Verbose           bool   `yaml:"verbose" toml:"verbose"`
		KeyLog            bool   `yaml:"key_log" toml:"key_log"`
		DispatchTimeoutMs int    `yaml:"dispatch_timeout_ms" toml:"dispatch_timeout_ms"`
		ShutdownGrace     int    `yaml:"shutdown_grace" toml:"shutdown_grace"`
		FnKey             string `yaml:"fn_key" toml:"fn_key"`
		ChordKey          string `yaml:"chord_key" toml:"chord_key"`
	} `yaml:"general" toml:"general"`
	Notifications struct {
		Enabled       bool `yaml:"enabled" toml:"enabled"`
		ShowErrors    bool `yaml:"show_errors" toml:"show_errors"`
		ErrorThrottle int  `yaml:"error_throttle" toml:"error_throttle"`
	} `yaml:"notifications" toml:"notifications"`
	Audio struct {
		Enabled bool              `yaml:"enabled" toml:"enabled"`
		Volume  int               `yaml:"volume" toml:"volume"`
		Cues    map[string]string `yaml:"cues" toml:"cues"`
	} `yaml:"audio" toml:"audio"`
	Expander struct {
		Enabled            bool              `yaml:"enabled" toml:"enabled"`
		SilenceSuggestions bool              `yaml:"silence_suggestions" toml:"silence_suggestions"`
		CaretMarker        string            `yaml:"caret_marker" toml:"caret_marker"`
		QueueSize          int               `yaml:"queue_size" toml:"queue_size"`
		Abbreviations      map[string]string `yaml:"abbreviations" toml:"abbreviations"`
		Locations          map[string]string `yaml:"locations" toml:"locations"`
	} `yaml:"expander" toml:"expander"`
	Journal struct {
		Enabled bool   `yaml:"enabled" toml:"enabled"`
		Path    string `yaml:"path" toml:"path"`
	} `yaml:"journal" toml:"journal"`
	Advanced struct {
		RetryAttempts int `yaml:"retry_attempts" toml:"retry_attempts"`
		RetryDelay    int `yaml:"retry_delay" toml:"retry_delay"`
	} `yaml:"advanced" toml:"advanced"`
	Hotkeys []HotkeyConfig `yaml:"hotkeys" toml:"hotkeys"`
}

// Flags are the command-line options that are not configuration values.
type Flags struct {
	ConfigPath   string
	PrintHotkeys bool
}

// ShutdownGrace is how long shutdown waits for running actions.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.General.ShutdownGrace) * time.Second
}

// DispatchTimeout bounds the verdict wait in the hook callback.
func (c *Config) DispatchTimeout() time.Duration {
	return time.Duration(c.General.DispatchTimeoutMs) * time.Millisecond
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	config := &Config{}

	config.General.SuppressAll = false
	config.General.DispatchTimeoutMs = 200
	config.General.ShutdownGrace = 10
	config.General.FnKey = "fn"
	config.General.ChordKey = "`"

	config.Notifications.Enabled = true
	config.Notifications.ShowErrors = true
	config.Notifications.ErrorThrottle = 30

	config.Audio.Enabled = true
	config.Audio.Volume = 70
	config.Audio.Cues = map[string]string{
		"on":     "sounds/on.mp3",
		"off":    "sounds/off.mp3",
		"denied": "sounds/denied.mp3",
		"error":  "sounds/error.mp3",
	}

	config.Expander.Enabled = true
	config.Expander.CaretMarker = expander.DefaultCaretMarker
	config.Expander.QueueSize = 256
	config.Expander.Abbreviations = map[string]string{
		":py":    "python",
		":name":  "name place holder",
		":gmail": "testmail123@host.com",
	}
	config.Expander.Locations = map[string]string{
		"!cmd":   `C:\Windows\System32\cmd.exe`,
		"!paint": `C:\Windows\System32\mspaint.exe`,
		"!prog":  `C:\Program Files`,
	}

	config.Journal.Enabled = true
	config.Journal.Path = filepath.Join("data", "journal.db")

	config.Advanced.RetryAttempts = 3
	config.Advanced.RetryDelay = 1

	config.Hotkeys = defaultHotkeys()
	return config
}

func defaultHotkeys() []HotkeyConfig {
	lock := func(keys, action string, args ...string) HotkeyConfig {
		return HotkeyConfig{Keys: keys, Tier: "lock", Lock: "scroll", Action: action, Args: args}
	}
	explorer := func(keys, action string, pass bool) HotkeyConfig {
		return HotkeyConfig{
			Keys: keys, Tier: "focus", Classes: []string{"CabinetWClass"}, IncludeDesktop: true,
			PassThrough: pass, Action: action,
		}
	}
	return []HotkeyConfig{
		{Keys: "ctrl+shift+=", Action: "volume_up"},
		{Keys: "ctrl+shift+-", Action: "volume_down"},
		{Keys: "ctrl+shift+numpad_add", Action: "volume_up"},
		{Keys: "ctrl+shift+numpad_sub", Action: "volume_down"},
		{Keys: "alt+fn+d", Action: "toggle_suppress_all"},
		{Keys: "win+fn+q", Action: "quit"},
		{Keys: "win+fn+s", Action: "status"},
		{Keys: "ctrl+alt+fn+l", Action: "list_hotkeys"},
		{Keys: "fn+capslock", Action: "toggle_scroll_lock"},

		lock("w", "scroll", "1"),
		lock("s", "scroll", "-1"),
		lock("a", "scroll", "-1", "h"),
		lock("d", "scroll", "1", "h"),
		lock("alt+w", "scroll", "1"),
		lock("alt+s", "scroll", "-1"),
		lock("alt+a", "scroll", "-1", "h"),
		lock("alt+d", "scroll", "1", "h"),
		lock("q", "click", "left"),
		lock("e", "click", "right"),
		lock("2", "click", "center"),
		lock("backtick+q", "hold_click", "left"),
		lock("backtick+e", "hold_click", "right"),
		lock("backtick+2", "hold_click", "center"),
		lock("backtick+`", "hotkey", "ctrl+c"),
		lock(";", "move_cursor", "0", "-40"),
		lock("'", "move_cursor", "40", "0"),
		lock("/", "move_cursor", "0", "40"),
		lock(".", "move_cursor", "-40", "0"),
		lock("alt+;", "move_cursor", "0", "-80"),
		lock("alt+'", "move_cursor", "80", "0"),
		lock("alt+/", "move_cursor", "0", "80"),
		lock("alt+.", "move_cursor", "-80", "0"),
		lock("shift+;", "move_cursor", "0", "-5"),
		lock("shift+'", "move_cursor", "5", "0"),
		lock("shift+/", "move_cursor", "0", "5"),
		lock("shift+.", "move_cursor", "-5", "0"),
		lock("f1", "hotkey", "ctrl+z", "300"),
		lock("f2", "hotkey", "ctrl+y", "300"),

		explorer("ctrl+w", "remember_folder", true),
		explorer("alt+f4", "remember_folder", true),
		explorer("ctrl+shift+t", "reopen_folder", false),
	}
}

// LoadConfig loads the configuration file named by -config (config.yaml by
// default, config.toml when only that exists) and applies the flags.
func LoadConfig(args []string, stdout io.Writer) (*Config, Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&flags.ConfigPath, "config", "", "Path to config.yaml or config.toml")
	verbose := fs.Bool("verbose", false, "Log at debug level")
	suppressAll := fs.Bool("suppress-all", false, "Start with every key suppressed (hold Shift to type)")
	fs.BoolVar(&flags.PrintHotkeys, "print-hotkeys", false, "Print the hotkey table and exit")
	if err := fs.Parse(args); err != nil {
		return nil, flags, fmt.Errorf("%w: %w", hotkey.ErrConfig, err)
	}

	config := DefaultConfig()

	path := flags.ConfigPath
	if path == "" {
		path = findConfigFile("config.yaml", "config.yml", "config.toml")
	}
	if path != "" {
		fmt.Fprintf(stdout, "Loading configuration from %s\n", path)
		if err := loadConfigFromFile(config, path); err != nil {
			return nil, flags, fmt.Errorf("%w: failed to load config file: %v", hotkey.ErrConfig, err)
		}
		flags.ConfigPath = path
	} else {
		fmt.Fprintln(stdout, "No config file found, using defaults and command-line flags")
	}

	// Flags only ever switch these on.
	if *verbose {
		config.General.Verbose = true
	}
	if *suppressAll {
		config.General.SuppressAll = true
	}

	if err := validateConfig(config); err != nil {
		return nil, flags, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, flags, nil
}

func findConfigFile(candidates ...string) string {
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadConfigFromFile decodes filename over config; the format follows the
// extension.
func loadConfigFromFile(config *Config, filename string) error {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		_, err = toml.Decode(string(data), config)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(filename))
	}
	return err
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	var errs []error

	if t := config.General.DispatchTimeoutMs; t < 10 || t > 280 {
		errs = append(errs, fmt.Errorf("dispatch_timeout_ms must be between 10 and 280, got: %d", t))
	}
	if config.General.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("shutdown_grace must be non-negative, got: %d", config.General.ShutdownGrace))
	}
	if _, err := keyboard.ParseKey(config.General.FnKey); err != nil {
		errs = append(errs, fmt.Errorf("fn_key: %v", err))
	}
	if _, err := keyboard.ParseKey(config.General.ChordKey); err != nil {
		errs = append(errs, fmt.Errorf("chord_key: %v", err))
	}
	if v := config.Audio.Volume; v < 0 || v > 100 {
		errs = append(errs, fmt.Errorf("audio volume must be between 0 and 100, got: %d", v))
	}
	if config.Notifications.ErrorThrottle < 0 {
		errs = append(errs, fmt.Errorf("error_throttle must be non-negative, got: %d", config.Notifications.ErrorThrottle))
	}
	if config.Advanced.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got: %d", config.Advanced.RetryAttempts))
	}
	if config.Advanced.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay must be non-negative, got: %d", config.Advanced.RetryDelay))
	}
	if config.Journal.Enabled && config.Journal.Path == "" {
		errs = append(errs, errors.New("journal path cannot be empty"))
	}
	if config.Expander.Enabled {
		if err := config.ExpanderTables().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("expander: %v", err))
		}
	}
	if entries, err := BuildEntries(config.Hotkeys); err != nil {
		errs = append(errs, err)
	} else if _, err := hotkey.NewRegistry(entries, actions.Builtins(actions.Deps{}, nil)); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", hotkey.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// ExpanderTables returns the expansion tables of the configuration.
func (c *Config) ExpanderTables() expander.Tables {
	return expander.Tables{
		Abbreviations: c.Expander.Abbreviations,
		Locations:     c.Expander.Locations,
		CaretMarker:   c.Expander.CaretMarker,
	}
}
