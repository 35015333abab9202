package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
)

func newExpandCommand(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "expand [template-id]",
		Short: "List occurrences in a date range without writing them",
		Long: `List the occurrences of one template, or of every active template, dated
within [--from, --to]. Overrides are applied. Defaults to today through the
generation horizon.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			start, end := h.now, h.cfg.Horizon(h.now)
			if from != "" {
				if start, err = parseDate("--from", from); err != nil {
					return err
				}
			}
			if to != "" {
				if end, err = parseDate("--to", to); err != nil {
					return err
				}
			}

			tpls := h.store.Active()
			if len(args) > 0 {
				t, err := h.store.Get(args[0])
				if err != nil {
					return err
				}
				tpls = []model.RecurrenceTemplate{t}
			}

			var occs []model.Occurrence
			for _, t := range tpls {
				occs = append(occs, recurrence.Expand(t, start, end, h.store.Overrides(t.ID))...)
			}
			sort.SliceStable(occs, func(i, j int) bool { return occs[i].Date.Before(occs[j].Date) })

			out := cmd.OutOrStdout()
			if len(occs) == 0 {
				fmt.Fprintln(out, "No occurrences")
				return nil
			}
			for _, o := range occs {
				fmt.Fprintln(out, formatOccurrence(o))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&to, "to", "", "range end, YYYY-MM-DD (default: today + generation.horizon_days)")
	return cmd
}
