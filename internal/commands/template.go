package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
	"github.com/cleared-dev/hearth/internal/runlog"
)

func newTemplateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage recurrence templates",
	}
	cmd.AddCommand(
		newTemplateAddCommand(opts),
		newTemplateListCommand(opts),
		newTemplateShowCommand(opts),
		newTemplateSetActiveCommand(opts, "pause", false),
		newTemplateSetActiveCommand(opts, "resume", true),
	)
	return cmd
}

type templateFlags struct {
	frequency   string
	interval    int
	day         int
	weekdays    []string
	start       string
	end         string
	amount      string
	direction   string
	category    string
	description string
	merchant    string
	account     string
}

func newTemplateAddCommand(opts *rootOptions) *cobra.Command {
	var f templateFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recurrence template",
		Example: `  hearth template add --frequency monthly --day 1 --amount 1200 --description Rent --category rent
  hearth template add --frequency weekly --interval 2 --weekday mon --weekday thu --amount 40 --description Cleaner`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateAdd(cmd, opts, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.frequency, "frequency", "", "daily, weekly, monthly or yearly (required)")
	fl.IntVar(&f.interval, "interval", 1, "repeat every N frequency units")
	fl.IntVar(&f.day, "day", 0, "day of month for monthly schedules (default: start date's day)")
	fl.StringSliceVar(&f.weekdays, "weekday", nil, "weekday for weekly schedules, repeatable (mon..sun or 0-6)")
	fl.StringVar(&f.start, "start", "", "first date, YYYY-MM-DD (default: today)")
	fl.StringVar(&f.end, "end", "", "last date, YYYY-MM-DD")
	fl.StringVar(&f.amount, "amount", "", "amount per occurrence (required)")
	fl.StringVar(&f.direction, "direction", string(model.DirectionExpense), "income, expense or transfer")
	fl.StringVar(&f.category, "category", "", "category id")
	fl.StringVar(&f.description, "description", "", "description (required)")
	fl.StringVar(&f.merchant, "merchant", "", "merchant name")
	fl.StringVar(&f.account, "account", "", "account id (default: import.default_account)")
	_ = cmd.MarkFlagRequired("frequency")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runTemplateAdd(cmd *cobra.Command, opts *rootOptions, f templateFlags) error {
	h, err := openHousehold(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	draft, err := f.draft(cmd, h.now)
	if err != nil {
		return err
	}
	if verrs := recurrence.Validate(draft); len(verrs) > 0 {
		return fmt.Errorf("invalid schedule: %s", strings.Join(recurrence.Messages(verrs), "; "))
	}

	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("--amount must not be negative; use --direction")
	}
	dir := model.Direction(f.direction)
	if !dir.Valid() {
		return fmt.Errorf("--direction: unknown direction %q", f.direction)
	}
	if err := h.checkCategory(f.category); err != nil {
		return err
	}
	account := f.account
	if account == "" {
		account = h.cfg.Import.DefaultAccount
	}

	t := model.RecurrenceTemplate{
		HouseholdID: h.cfg.Household.ID,
		Frequency:   draft.Frequency,
		Interval:    f.interval,
		ByMonthDay:  f.day,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		Timezone:    h.cfg.Household.Timezone,
		Direction:   dir,
		Amount:      amount,
		CategoryID:  f.category,
		Description: f.description,
		Merchant:    f.merchant,
		AccountID:   account,
		IsActive:    true,
	}
	for _, wd := range draft.ByWeekday {
		t.ByWeekday = append(t.ByWeekday, time.Weekday(wd))
	}

	t, err = h.store.Add(t, h.now)
	if err != nil {
		return err
	}
	if err := h.store.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added template %s: %s, %s %s (next run %s)\n",
		id.ShortID(t.ID), t.Description, recurrence.Describe(t), t.Amount.StringFixed(2), formatRun(t.NextRunAt))

	return h.finish(runlog.Entry{
		Command:    "template add",
		TemplateID: t.ID,
		Count:      1,
		Details:    recurrence.Describe(t),
	}, "template: add "+t.Description)
}

// draft collects the schedule flags. Flags the user never set stay nil so
// Validate treats them as absent.
func (f templateFlags) draft(cmd *cobra.Command, today time.Time) (recurrence.Draft, error) {
	d := recurrence.Draft{Frequency: model.Frequency(f.frequency)}

	if cmd.Flags().Changed("interval") {
		interval := f.interval
		d.Interval = &interval
	}
	if cmd.Flags().Changed("day") {
		day := f.day
		d.ByMonthDay = &day
	}
	for _, s := range f.weekdays {
		wd, err := parseWeekday(s)
		if err != nil {
			return recurrence.Draft{}, err
		}
		d.ByWeekday = append(d.ByWeekday, wd)
	}

	d.StartDate = today
	if f.start != "" {
		start, err := parseDate("--start", f.start)
		if err != nil {
			return recurrence.Draft{}, err
		}
		d.StartDate = start
	}
	if f.end != "" {
		end, err := parseDate("--end", f.end)
		if err != nil {
			return recurrence.Draft{}, err
		}
		d.EndDate = &end
	}
	return d, nil
}

var weekdayAbbrev = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekday accepts "mon", "Monday" or a number. Out-of-range numbers are
// passed through for Validate to report.
func parseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if len(s) >= 3 {
		if wd, ok := weekdayAbbrev[s[:3]]; ok {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("--weekday: unknown weekday %q", s)
}

func newTemplateListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			all := h.store.All()
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates")
				return nil
			}
			printTemplates(cmd.OutOrStdout(), all)
			return nil
		},
	}
}

func printTemplates(w io.Writer, all []model.RecurrenceTemplate) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSCHEDULE\tAMOUNT\tDESCRIPTION\tNEXT RUN")
	for _, t := range all {
		status := "active"
		if !t.IsActive {
			status = "paused"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
			id.ShortID(t.ID), status, recurrence.Describe(t),
			t.Direction, t.Amount.StringFixed(2), t.Description, formatRun(t.NextRunAt))
	}
	tw.Flush()
}

func newTemplateShowCommand(opts *rootOptions) *cobra.Command {
	var upcoming int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template, its overrides and upcoming occurrences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := h.store.Get(args[0])
			if err != nil {
				return err
			}
			showTemplate(cmd.OutOrStdout(), h, t, upcoming)
			return nil
		},
	}
	cmd.Flags().IntVar(&upcoming, "upcoming", 3, "number of upcoming occurrences to show")
	return cmd
}

func showTemplate(w io.Writer, h *household, t model.RecurrenceTemplate, upcoming int) {
	fmt.Fprintf(w, "ID:          %s\n", t.ID)
	fmt.Fprintf(w, "Description: %s\n", t.Description)
	if t.Merchant != "" {
		fmt.Fprintf(w, "Merchant:    %s\n", t.Merchant)
	}
	fmt.Fprintf(w, "Schedule:    %s\n", recurrence.Describe(t))
	fmt.Fprintf(w, "Amount:      %s %s\n", t.Direction, t.Amount.StringFixed(2))
	if t.CategoryID != "" {
		fmt.Fprintf(w, "Category:    %s\n", t.CategoryID)
	}
	fmt.Fprintf(w, "Account:     %s\n", t.AccountID)
	fmt.Fprintf(w, "Starts:      %s\n", id.InstanceKey(t.StartDate))
	if t.EndDate != nil {
		fmt.Fprintf(w, "Ends:        %s\n", id.InstanceKey(*t.EndDate))
	}
	fmt.Fprintf(w, "Active:      %t\n", t.IsActive)
	fmt.Fprintf(w, "Last run:    %s\n", formatRun(t.LastRunAt))
	fmt.Fprintf(w, "Next run:    %s\n", formatRun(t.NextRunAt))

	overrides := h.store.Overrides(t.ID)
	if len(overrides) > 0 {
		fmt.Fprintln(w, "Overrides:")
		for _, o := range overrides {
			fmt.Fprintf(w, "  %s  %s\n", o.InstanceKey, describeOverride(o))
		}
	}

	if upcoming <= 0 {
		return
	}
	occs := recurrence.Expand(t, h.now, h.now.AddDate(5, 0, 0), overrides)
	if len(occs) == 0 {
		return
	}
	if len(occs) > upcoming {
		occs = occs[:upcoming]
	}
	fmt.Fprintln(w, "Upcoming:")
	for _, o := range occs {
		fmt.Fprintf(w, "  %s\n", formatOccurrence(o))
	}
}

func newTemplateSetActiveCommand(opts *rootOptions, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHousehold(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := h.store.SetActive(args[0], active, h.now)
			if err != nil {
				return err
			}
			if err := h.store.Save(); err != nil {
				return err
			}

			state := "Paused"
			if active {
				state = "Resumed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s template %s (%s), next run %s\n",
				state, id.ShortID(t.ID), t.Description, formatRun(t.NextRunAt))

			return h.finish(runlog.Entry{
				Command:    "template " + verb,
				TemplateID: t.ID,
				Count:      1,
			}, fmt.Sprintf("template: %s %s", verb, t.Description))
		},
	}
}

func formatRun(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return id.InstanceKey(*t)
}

func formatOccurrence(o model.Occurrence) string {
	s := fmt.Sprintf("%s  %-8s %10s  %s", o.InstanceKey, o.Direction, o.Amount.StringFixed(2), o.Description)
	if o.IsOverridden {
		s += "  (modified)"
	}
	return s
}
