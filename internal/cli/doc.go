// Package cli implements the profdash command-line interface.
//
// Each Cobra command parses its flags and hands off to the packages that do
// the work: config for settings, session for supervising the profiler,
// dashboard for presentation.
//
// # Command Structure
//
//	profdash profile <file.py>    - Profile a script in the live dashboard
//	profdash <file.py>            - Shorthand for profile
//	profdash init                 - Create .profdash.yaml
//	profdash config show|set      - Inspect or change settings
//	profdash version              - Build and interpreter info
//	profdash completion <shell>   - Shell completion scripts
//
// # Hosting Sessions
//
// The session supervisor talks to its environment through a HostBridge. In
// the terminal that is cliHost: the active document is the file named on the
// command line, Spawn starts a local process, and errors go to stderr. While
// the full-screen dashboard is up, host output is held and printed once it
// closes, and the standard logger is redirected away from the screen.
//
// When stdout is not a terminal (or with --plain) a PlainPanel prints each
// message as a line of text instead, so output can be piped or logged.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command and available to all subcommands.
package cli
