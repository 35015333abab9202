package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/patterns"
	"github.com/cleared-dev/hearth/internal/recurrence"
	"github.com/cleared-dev/hearth/internal/runlog"
)

func newAcceptCommand(opts *rootOptions) *cobra.Command {
	var format, category, account string

	cmd := &cobra.Command{
		Use:   "accept <counterparty>",
		Short: "Turn a detected pattern into a recurrence template",
		Long: `Create an active template from the detected pattern for counterparty.
The template starts on the most recent matching payment, which is treated as
already recorded, so generate picks up from the following occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := h.checkCategory(category); err != nil {
				return err
			}

			found, err := h.detect(format, false)
			if err != nil {
				return err
			}
			p, ok := findPattern(found, args[0])
			if !ok {
				return fmt.Errorf("no untemplated pattern for %q; run hearth detect", args[0])
			}

			if account == "" {
				account = h.cfg.Import.DefaultAccount
			}
			t := patterns.ToTemplate(p, patterns.TemplateParams{
				ID:          id.NewTemplateID(),
				HouseholdID: h.cfg.Household.ID,
				CategoryID:  category,
				AccountID:   account,
				Timezone:    h.cfg.Household.Timezone,
			})
			last := p.LastDate()
			t.LastRunAt = &last

			t, err = h.store.Add(t, h.now)
			if err != nil {
				return err
			}
			if err := h.store.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Accepted %s as template %s: %s %s (next run %s)\n",
				p.Counterparty, id.ShortID(t.ID), recurrence.Describe(t), t.Amount.StringFixed(2), formatRun(t.NextRunAt))

			return h.finish(runlog.Entry{
				Command:    "accept",
				TemplateID: t.ID,
				Count:      1,
				Details:    p.Reason,
			}, "accept: "+p.Counterparty)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "bank CSV format (default: import.format)")
	cmd.Flags().StringVar(&category, "category", "", "category id for the new template")
	cmd.Flags().StringVar(&account, "account", "", "account id (default: import.default_account)")
	return cmd
}

func findPattern(found []model.TransactionPattern, name string) (model.TransactionPattern, bool) {
	key := patterns.NormalizeCounterparty(name)
	for _, p := range found {
		if p.NormalizedCounterparty == key {
			return p, true
		}
	}
	return model.TransactionPattern{}, false
}
