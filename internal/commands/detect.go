package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/importer"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/patterns"
)

func newDetectCommand(opts *rootOptions) *cobra.Command {
	var format string
	var all bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Find recurring payments in the bank CSVs under import/",
		Long: `Scan the bank exports in import/ for payments that recur on a regular
schedule with a consistent amount. Counterparties that already have an active
template are hidden unless --all is set. Accept a pattern with "hearth accept".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			found, err := h.detect(format, all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No recurring patterns found")
				return nil
			}
			for _, p := range found {
				printPattern(out, p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "bank CSV format (default: import.format)")
	cmd.Flags().BoolVar(&all, "all", false, "include counterparties that already have a template")
	return cmd
}

// detect mines the household's import history as of h.now.
func (h *household) detect(format string, includeTemplated bool) ([]model.TransactionPattern, error) {
	if format == "" {
		format = h.cfg.Import.Format
	}
	txns, err := importer.LoadHistory(importer.DefaultRegistry(), h.root, format)
	if err != nil {
		return nil, fmt.Errorf("loading import history: %w", err)
	}

	found := patterns.Detect(txns, h.cfg.PatternConfig(), h.now)
	h.logger.Debug("detection complete", "transactions", len(txns), "patterns", len(found))
	if includeTemplated {
		return found, nil
	}
	return patterns.ExcludeTemplated(found, h.store.All()), nil
}

func printPattern(w io.Writer, p model.TransactionPattern) {
	schedule := string(p.Frequency)
	if p.Interval > 1 {
		schedule = fmt.Sprintf("every %d %s", p.Interval, p.Frequency)
	}
	if p.DayOfMonth > 0 {
		schedule += fmt.Sprintf(" (day %d)", p.DayOfMonth)
	}
	fmt.Fprintf(w, "%s\n  %s, %s, confidence %.2f\n  %s\n",
		p.Counterparty, schedule, p.AvgAmount.StringFixed(2), p.Confidence, p.Reason)
}
