// Package util holds small string helpers shared by the CLI and process code.
package util

import "strings"

// ShellQuote wraps s in single quotes, escaping embedded single quotes, so
// the shell treats it literally.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellWord returns s unchanged when the shell would neither split nor
// expand it, and ShellQuote(s) otherwise. Commands shown to the user stay
// readable this way.
func ShellWord(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !isShellSafe(r) {
			return ShellQuote(s)
		}
	}
	return s
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./=:,+@%", r)
}
