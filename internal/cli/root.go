package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/ui"
	"github.com/rileyhilliard/profdash/internal/util"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "profdash",
	Short: "Live CPU and memory dashboard for Python scripts",
	Long: `profdash runs a Python script under a sampling profiler and shows
CPU, memory and per-function statistics in a live terminal dashboard.

  profdash profile train.py       profile a script
  profdash train.py               same, shorthand
  profdash profile --watch app.py re-run whenever the file is saved
  profdash init                   create .profdash.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if !colorEnabled() {
			ui.DisableColors()
		}
	},
}

// colorEnabled reports whether styled output is allowed (--no-color, NO_COLOR).
func colorEnabled() bool {
	return !noColor && os.Getenv("NO_COLOR") == ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .profdash.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits with its status.
func Execute() {
	rootCmd.SetArgs(rewriteArgs(os.Args[1:]))

	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exitErr *errors.ExitError
	switch {
	case stderrors.As(err, &exitErr):
		// Already reported.
	case isUnknownCommandError(err) && extractUnknownCommand(err) != "":
		name := extractUnknownCommand(err)
		fmt.Fprintln(os.Stderr, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown command '%s'", name),
			unknownCommandHint(name)))
	default:
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(errors.ExitCode(err))
}

// rewriteArgs turns "profdash script.py ..." into "profdash profile script.py ...".
// Only the first positional argument is considered.
func rewriteArgs(args []string) []string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--config" {
			i++
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		if !isScriptArg(a) {
			return args
		}
		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, "profile")
		return append(out, args[i:]...)
	}
	return args
}

// isScriptArg reports whether a names a Python file rather than a subcommand.
func isScriptArg(a string) bool {
	return strings.EqualFold(filepath.Ext(a), ".py")
}

// unknownCommandHint suggests the closest subcommand, or how to profile a file.
func unknownCommandHint(name string) string {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	if similar := util.SuggestSimilar(name, names, 1); len(similar) > 0 {
		return fmt.Sprintf("Did you mean 'profdash %s'?", similar[0])
	}
	return "Run 'profdash --help' for commands, or 'profdash profile <file.py>' to profile a script"
}

// isUnknownCommandError checks if the error is from cobra's unknown command handling.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "profdash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
