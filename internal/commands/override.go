package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
	"github.com/cleared-dev/hearth/internal/runlog"
)

func newOverrideCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Skip or modify a single occurrence",
	}
	cmd.AddCommand(newOverrideSkipCommand(opts), newOverrideModifyCommand(opts))
	return cmd
}

func newOverrideSkipCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <template-id> <date>",
		Short: "Skip one occurrence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := model.Override{InstanceKey: args[1], Action: model.OverrideSkip}
			return runOverride(cmd, opts, args[0], o)
		},
	}
}

func newOverrideModifyCommand(opts *rootOptions) *cobra.Command {
	var amount, category, description string

	cmd := &cobra.Command{
		Use:   "modify <template-id> <date>",
		Short: "Change the amount, category or description of one occurrence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := model.Override{InstanceKey: args[1], Action: model.OverrideModify}
			fl := cmd.Flags()
			if fl.Changed("amount") {
				a, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("--amount: %w", err)
				}
				o.Amount = &a
			}
			if fl.Changed("category") {
				o.CategoryID = &category
			}
			if fl.Changed("description") {
				o.Description = &description
			}
			if o.Amount == nil && o.CategoryID == nil && o.Description == nil {
				return fmt.Errorf("nothing to modify: set --amount, --category or --description")
			}
			return runOverride(cmd, opts, args[0], o)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "replacement amount")
	cmd.Flags().StringVar(&category, "category", "", "replacement category id")
	cmd.Flags().StringVar(&description, "description", "", "replacement description")
	return cmd
}

func runOverride(cmd *cobra.Command, opts *rootOptions, ref string, o model.Override) error {
	h, err := openHousehold(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	t, err := h.store.Get(ref)
	if err != nil {
		return err
	}
	if o.CategoryID != nil {
		if err := h.checkCategory(*o.CategoryID); err != nil {
			return err
		}
	}

	day, err := id.ParseInstanceKey(o.InstanceKey, nil)
	if err != nil {
		return err
	}
	// Paused templates can still be given overrides for when they resume.
	scheduled := t
	scheduled.IsActive = true
	if len(recurrence.Expand(scheduled, day, day, nil)) == 0 {
		return fmt.Errorf("%s is not a scheduled date for %s (%s)", o.InstanceKey, id.ShortID(t.ID), recurrence.Describe(t))
	}

	o.TemplateID = t.ID
	o.InstanceKey = id.InstanceKey(day)
	if err := h.store.UpsertOverride(o); err != nil {
		return err
	}
	if err := h.store.Save(); err != nil {
		return err
	}

	details := describeOverride(o)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s: %s\n", id.ShortID(t.ID), t.Description, o.InstanceKey, details)

	return h.finish(runlog.Entry{
		Command:    "override " + string(o.Action),
		TemplateID: t.ID,
		Count:      1,
		Details:    o.InstanceKey + " " + details,
	}, fmt.Sprintf("override: %s %s %s", o.Action, t.Description, o.InstanceKey))
}

func describeOverride(o model.Override) string {
	if o.Action == model.OverrideSkip {
		return "skipped"
	}
	var parts []string
	if o.Amount != nil {
		parts = append(parts, "amount="+o.Amount.StringFixed(2))
	}
	if o.CategoryID != nil {
		parts = append(parts, "category="+*o.CategoryID)
	}
	if o.Description != nil {
		parts = append(parts, fmt.Sprintf("description=%q", *o.Description))
	}
	return "modified " + strings.Join(parts, " ")
}
