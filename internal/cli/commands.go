package cli

import (
	"io"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a completion script for profdash. Subcommands, flags and
config keys (for 'profdash config set') complete.

  profdash completion bash > /etc/bash_completion.d/profdash
  profdash completion zsh > "${fpath[1]}/_profdash"
  profdash completion fish > ~/.config/fish/completions/profdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCompletion(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// writeCompletion writes the completion script for shell to w.
func writeCompletion(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletion(w)
	}
	return errors.New(errors.ErrConfig,
		"Unknown shell: "+shell,
		"Supported shells: bash, zsh, fish, powershell")
}
