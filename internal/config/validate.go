package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/frame"
	"github.com/rileyhilliard/profdash/internal/registry"
)

// MaxWindow bounds dashboard.window so the charts stay responsive.
const MaxWindow = 10000

// MinRefresh is the fastest allowed status tick.
const MinRefresh = 10 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but profdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade profdash, or lower the version in .profdash.yaml.")
	}

	if err := validateProfiler(cfg.Profiler); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'profiler' section in your .profdash.yaml.")
	}
	if err := validateFraming(cfg.Framing); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'framing' section in your .profdash.yaml.")
	}
	if err := validateDashboard(cfg.Dashboard); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dashboard' section in your .profdash.yaml.")
	}
	if err := validateSession(cfg.Session); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'session' section in your .profdash.yaml.")
	}
	if err := validateWatch(cfg.Watch); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'watch' section in your .profdash.yaml.")
	}

	return nil
}

func validateProfiler(p ProfilerConfig) error {
	if strings.TrimSpace(p.Script) == "" {
		return fmt.Errorf("profiler.script is empty")
	}
	return nil
}

func validateFraming(f FramingConfig) error {
	if !isValidMode(f.Mode) {
		return fmt.Errorf("framing.mode '%s' isn't valid - use %s", f.Mode, modeList())
	}
	if f.Start == "" {
		return fmt.Errorf("framing.start is empty")
	}
	if f.Mode == string(frame.ModeLines) && f.End == "" {
		return fmt.Errorf("framing.end is required in lines mode")
	}
	if f.Start == f.End {
		return fmt.Errorf("framing.start and framing.end must differ")
	}
	return nil
}

func isValidMode(mode string) bool {
	for _, m := range frame.Modes() {
		if mode == string(m) {
			return true
		}
	}
	return false
}

func modeList() string {
	modes := frame.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = "'" + string(m) + "'"
	}
	return strings.Join(names, ", ")
}

func validateDashboard(d DashboardConfig) error {
	if d.Window < 1 || d.Window > MaxWindow {
		return fmt.Errorf("dashboard.window must be between 1 and %d (got %d)", MaxWindow, d.Window)
	}
	if d.Refresh != "" {
		interval, err := time.ParseDuration(d.Refresh)
		if err != nil {
			return fmt.Errorf("dashboard.refresh '%s' isn't a valid duration (try '250ms')", d.Refresh)
		}
		if interval < MinRefresh {
			return fmt.Errorf("dashboard.refresh must be at least %s (got %s)", MinRefresh, interval)
		}
	}
	return nil
}

func validateSession(s SessionConfig) error {
	switch registry.Policy(s.Policy) {
	case registry.PolicyReject, registry.PolicyQueue:
		return nil
	default:
		return fmt.Errorf("session.policy '%s' isn't valid - use '%s' or '%s'", s.Policy, registry.PolicyReject, registry.PolicyQueue)
	}
}

func validateWatch(w WatchConfig) error {
	if w.Debounce == "" {
		return nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return fmt.Errorf("watch.debounce '%s' isn't a valid duration (try '300ms')", w.Debounce)
	}
	if d < 0 {
		return fmt.Errorf("watch.debounce can't be negative")
	}
	return nil
}
