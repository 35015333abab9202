package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
)

func newNextCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next [template-id]",
		Short: "Show the next scheduled date after today",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			tpls := h.store.Active()
			if len(args) > 0 {
				t, err := h.store.Get(args[0])
				if err != nil {
					return err
				}
				tpls = []model.RecurrenceTemplate{t}
			}
			if len(tpls) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No active templates")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range tpls {
				next := "none"
				if d, ok := recurrence.NextRun(t, h.now); ok {
					next = id.InstanceKey(d)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id.ShortID(t.ID), next, t.Description)
			}
			return tw.Flush()
		},
	}
}
