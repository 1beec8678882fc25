package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// pythonProbeTimeout bounds the interpreter lookup in version output.
const pythonProbeTimeout = 3 * time.Second

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash and build date of profdash, and the Python interpreter it would use here.`,
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return
		}
		writeVersion(cmd.OutOrStdout())
		writePython(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

// writeVersion prints the build information.
func writeVersion(w io.Writer) {
	fmt.Fprintf(w, "profdash %s\n", formatVersion(version))
	fmt.Fprintf(w, "commit: %s\n", commit)
	fmt.Fprintf(w, "built: %s\n", date)
	fmt.Fprintf(w, "go: %s\n", runtime.Version())
	fmt.Fprintf(w, "os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// writePython prints the interpreter profile would run, or why there is none.
func writePython(ctx context.Context, w io.Writer) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, pythonProbeTimeout)
	defer cancel()

	configured := ""
	root := "."
	if cfg, err := loadConfig(cfgFile); err == nil {
		configured = cfg.Profiler.Python
		root = cfg.ProjectRoot()
	}

	python, err := exec.Resolve(ctx, root, configured)
	if err != nil {
		fmt.Fprintln(w, "python: not found")
		return
	}
	v, err := exec.PythonVersion(ctx, python)
	if err != nil {
		fmt.Fprintf(w, "python: %s (unknown version)\n", python)
		return
	}
	fmt.Fprintf(w, "python: %s (%s)\n", v, python)
}

// formatVersion ensures version has a 'v' prefix for display
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
