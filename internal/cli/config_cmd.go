package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/profdash/internal/config"
	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/ui"
	"github.com/rileyhilliard/profdash/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change profdash settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
		}

		source := cfg.Path()
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", source, out)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: `Set one config value in the nearest .profdash.yaml, creating it in the
current directory if none exists. Comments and layout are kept.

Keys:
  ` + strings.Join(config.Keys, "\n  "),
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := setConfigValue(cfgFile, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", ui.SymbolSuccess, args[0], args[1], path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// setConfigValue writes key=value to the config file and returns its path.
// The file is left unchanged if the result doesn't validate.
func setConfigValue(explicit, key, value string) (string, error) {
	if !config.IsKnownKey(key) {
		suggestion := "Valid keys: " + strings.Join(config.Keys, ", ")
		if similar := util.SuggestSimilar(key, config.Keys, 1); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean '%s'?", similar[0])
		}
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown config key '%s'", key),
			suggestion)
	}

	path, err := config.Find(explicit)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
		if err := config.Write(path, config.DefaultConfig()); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to create "+path,
				"Check directory permissions")
		}
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path, "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to set %s", key),
			"Check the YAML syntax in "+path)
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0o644); restoreErr != nil {
			return "", errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Failed to restore "+path+" after an invalid change",
				"Fix the file by hand")
		}
		return "", err
	}
	return path, nil
}
