package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/runlog"
	"github.com/cleared-dev/hearth/internal/scheduler"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var upTo string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write due occurrences of every active template to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			end := h.cfg.Horizon(h.now)
			if upTo != "" {
				if end, err = parseDate("--up-to", upTo); err != nil {
					return err
				}
			}

			res, err := scheduler.Generate(h.store, h.ledger, end, h.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tr := range res.Templates {
				if tr.Created == 0 && !tr.Capped {
					continue
				}
				line := fmt.Sprintf("  %s  %-24s %d", id.ShortID(tr.TemplateID), tr.Description, tr.Created)
				if tr.Capped {
					line += "  (more pending, run again)"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Generated %d entries up to %s\n", res.Created, id.InstanceKey(end))

			return h.finish(runlog.Entry{
				Command: "generate",
				Count:   res.Created,
				Details: "up to " + id.InstanceKey(end),
			}, fmt.Sprintf("generate: %d entries up to %s", res.Created, id.InstanceKey(end)))
		},
	}

	cmd.Flags().StringVar(&upTo, "up-to", "", "generate through this date, YYYY-MM-DD (default: today + generation.horizon_days)")
	return cmd
}
