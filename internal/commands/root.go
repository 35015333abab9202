package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/buildinfo"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dir  string
	asOf string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "hearth",
		Short:   "Household recurring transactions",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "household directory")
	rootCmd.PersistentFlags().StringVar(&opts.asOf, "as-of", "", "treat this date (YYYY-MM-DD) as today")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newTemplateCommand(opts),
		newOverrideCommand(opts),
		newExpandCommand(opts),
		newNextCommand(opts),
		newGenerateCommand(opts),
		newDetectCommand(opts),
		newAcceptCommand(opts),
	)

	return rootCmd
}
