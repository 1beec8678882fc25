package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/profdash/internal/config"
	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/frame"
	"github.com/rileyhilliard/profdash/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Python         string // Pre-specified interpreter
	Script         string // Pre-specified profiler script
	Framing        string // Pre-specified framing mode
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

// initDefaults are init values taken from the environment.
type initDefaults struct {
	Python         string
	Script         string
	NonInteractive bool
}

// getInitDefaults reads PROFDASH_PYTHON, PROFDASH_SCRIPT and
// PROFDASH_NON_INTERACTIVE. CI=true also disables prompts.
func getInitDefaults() initDefaults {
	nonInteractive := os.Getenv("PROFDASH_NON_INTERACTIVE")
	return initDefaults{
		Python:         os.Getenv("PROFDASH_PYTHON"),
		Script:         os.Getenv("PROFDASH_SCRIPT"),
		NonInteractive: nonInteractive == "true" || nonInteractive == "1" || os.Getenv("CI") == "true",
	}
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .profdash.yaml config in the current directory",
	Long: `Create a .profdash.yaml config file, prompting for the interpreter,
the profiler script and the framing mode.

Examples:
  profdash init
  profdash init --python .venv/bin/python --script tools/profiler.py
  profdash init --non-interactive --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := getInitDefaults()
		opts := initOpts
		if opts.Python == "" {
			opts.Python = env.Python
		}
		if opts.Script == "" {
			opts.Script = env.Script
		}
		opts.NonInteractive = opts.NonInteractive || env.NonInteractive
		return Init(cmd.Context(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Python, "python", "", "Python interpreter (default: auto-detect)")
	initCmd.Flags().StringVar(&initOpts.Script, "script", "", "profiler script (default: "+config.DefaultScript+")")
	initCmd.Flags().StringVar(&initOpts.Framing, "framing", "", "framing mode (braces, last-brace, lines)")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")
	rootCmd.AddCommand(initCmd)
}

// Init creates a new .profdash.yaml configuration file.
func Init(ctx context.Context, opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Profiler.Python = opts.Python
	if opts.Script != "" {
		cfg.Profiler.Script = opts.Script
	}
	if opts.Framing != "" {
		cfg.Framing.Mode = opts.Framing
	}

	if !opts.NonInteractive {
		if err := promptInit(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	checkInterpreter(ctx, cfg.Profiler.Python)

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  profdash profile <file.py>   - Profile a script")
	fmt.Println("  profdash config set <k> <v>  - Change a setting")
	return nil
}

// promptInit asks for the settings init writes, starting from cfg's values.
func promptInit(cfg *config.Config) error {
	modes := make([]huh.Option[string], 0, len(frame.Modes()))
	for _, m := range frame.Modes() {
		modes = append(modes, huh.NewOption(string(m), string(m)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Python interpreter").
				Description("Leave empty to auto-detect (.venv, then python3 on PATH)").
				Placeholder(".venv/bin/python").
				Value(&cfg.Profiler.Python),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Profiler script").
				Description("Relative paths resolve against this directory").
				Placeholder(config.DefaultScript).
				Value(&cfg.Profiler.Script).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("profiler script is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Framing mode").
				Description("How structured events are delimited in the profiler's output").
				Options(modes...).
				Value(&cfg.Framing.Mode),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}
	cfg.Profiler.Python = strings.TrimSpace(cfg.Profiler.Python)
	cfg.Profiler.Script = strings.TrimSpace(cfg.Profiler.Script)
	return nil
}

// checkInterpreter reports which interpreter will be used. A missing one is
// a warning: the config is still written so it can be fixed later.
func checkInterpreter(ctx context.Context, configured string) {
	spinner := ui.NewSpinner("Checking Python interpreter")
	spinner.Start()

	python, err := exec.Resolve(ctx, ".", configured)
	var version string
	if err == nil {
		version, err = exec.PythonVersion(ctx, python)
	}
	if err == nil {
		spinner.SetLabel(fmt.Sprintf("%s (%s)", version, python))
	}
	spinner.Finish(err)

	if err != nil {
		ui.PrintWarning(firstLine(err) + " (config is written anyway)")
		return
	}
	fmt.Println()
}

// firstLine returns the headline of a structured error.
func firstLine(err error) string {
	msg := strings.TrimPrefix(err.Error(), ui.SymbolFail+" ")
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
