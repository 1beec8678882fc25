package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .profdash.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Profiler  ProfilerConfig  `yaml:"profiler" mapstructure:"profiler"`
	Framing   FramingConfig   `yaml:"framing" mapstructure:"framing"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`

	// path is where the config was loaded from; empty for defaults.
	path string
}

// ProfilerConfig controls how the profiler script is invoked.
type ProfilerConfig struct {
	// Python is the interpreter. Empty means auto-detect (.venv first, then PATH).
	// Supports ~ and ${HOME}, ${USER}, ${PROJECT}.
	Python string `yaml:"python" mapstructure:"python"`

	// Script is the profiler script. Relative paths resolve against the
	// directory holding the config file.
	Script string `yaml:"script" mapstructure:"script"`

	// Args are passed to the script before the target file.
	Args []string `yaml:"args,flow" mapstructure:"args"`
}

// FramingConfig controls how structured events are found in the profiler's stdout.
type FramingConfig struct {
	// Mode is "braces" (default), "last-brace", or "lines".
	Mode string `yaml:"mode" mapstructure:"mode"`

	// Start is the sentinel that precedes each event.
	Start string `yaml:"start" mapstructure:"start"`

	// End closes an event region in lines mode.
	End string `yaml:"end" mapstructure:"end"`
}

// DashboardConfig controls the TUI.
type DashboardConfig struct {
	// Window is how many realtime samples the charts keep.
	Window int `yaml:"window" mapstructure:"window"`

	// Refresh is the status tick interval (e.g., "250ms").
	Refresh string `yaml:"refresh" mapstructure:"refresh"`
}

// SessionConfig controls concurrent runs against the same file.
type SessionConfig struct {
	// Policy is "reject" (default) or "queue".
	Policy string `yaml:"policy" mapstructure:"policy"`
}

// WatchConfig controls --watch.
type WatchConfig struct {
	// Debounce coalesces bursts of file events (e.g., "300ms").
	Debounce string `yaml:"debounce" mapstructure:"debounce"`
}

// Defaults shared by DefaultConfig and the viper defaults.
const (
	DefaultScript      = "universal_profiler.py"
	DefaultFramingMode = "braces"
	DefaultStart       = "@@@PROFILER_START@@@"
	DefaultEnd         = "@@@PROFILER_END@@@"
	DefaultWindow      = 60
	DefaultRefresh     = "250ms"
	DefaultPolicy      = "reject"
	DefaultDebounce    = "300ms"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Profiler: ProfilerConfig{
			Script: DefaultScript,
			Args:   []string{},
		},
		Framing: FramingConfig{
			Mode:  DefaultFramingMode,
			Start: DefaultStart,
			End:   DefaultEnd,
		},
		Dashboard: DashboardConfig{
			Window:  DefaultWindow,
			Refresh: DefaultRefresh,
		},
		Session: SessionConfig{
			Policy: DefaultPolicy,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// RefreshInterval returns the parsed dashboard refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	return parseDuration(c.Dashboard.Refresh, 250*time.Millisecond)
}

// DebounceInterval returns the parsed watch debounce interval.
func (c *Config) DebounceInterval() time.Duration {
	return parseDuration(c.Watch.Debounce, 300*time.Millisecond)
}
