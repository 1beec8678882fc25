package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// Expand replaces ${NAME} and $NAME references in a config value.
//   - ${CONFIG_DIR} - directory holding the config file
//   - ${HOME}       - user's home directory
//   - anything else - the environment variable of that name
//
// Unset variables are left as written so a typo shows up in the error that
// follows instead of silently becoming an empty path.
func Expand(s, configDir string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, func(name string) string {
		switch name {
		case "CONFIG_DIR":
			return configDir
		case "HOME":
			return getHome()
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// expandPath applies Expand and then ExpandTilde.
func expandPath(s, configDir string) string {
	return ExpandTilde(Expand(s, configDir))
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	return "~"
}
