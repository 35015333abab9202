package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/categories"
	"github.com/cleared-dev/hearth/internal/config"
	"github.com/cleared-dev/hearth/internal/gitops"
	"github.com/cleared-dev/hearth/internal/runlog"
	"github.com/cleared-dev/hearth/internal/templates"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var name, timezone string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new household directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.dir = args[0]
			}
			dir, err := opts.root()
			if err != nil {
				return err
			}
			if err := runInit(dir, name, timezone, noGit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized household %q at %s\n", name, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "household name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "timezone label stamped on new templates")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(dir, name, timezone string, noGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	for _, d := range []string{"recurring", "ledger", "categories", "import", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, timezone)
	cfg.Git.AutoCommit = !noGit
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := categories.NewService(categories.DefaultChart()).Save(dir); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	if err := templates.NewStore(dir).Save(); err != nil {
		return fmt.Errorf("writing templates: %w", err)
	}

	// Bank exports stay local.
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("import/*.csv\n"), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ledger", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := runlog.Append(dir, runlog.Entry{
		Timestamp: time.Now(),
		Command:   "init",
		Details:   name,
	}); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}

	if noGit {
		return nil
	}
	if err := gitops.Init(dir); err != nil {
		return err
	}
	if _, err := gitops.CommitAll(dir, "init: "+name, gitops.Author{
		Name:  cfg.Git.AuthorName,
		Email: cfg.Git.AuthorEmail,
	}); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}
