package templates

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
)

// TemplateHeader is the CSV header for templates.csv.
const TemplateHeader = "template_id,household_id,frequency,interval,by_month_day,by_weekday,start_date,end_date,timezone,direction,amount,category_id,description,merchant,account_id,is_active,next_run_at,last_run_at"

// OverrideHeader is the CSV header for overrides.csv.
const OverrideHeader = "template_id,instance_key,action,fields,amount,category_id,description"

const dateFormat = id.InstanceKeyFormat

const (
	numTemplateFields = 18
	colID             = 0
	colHousehold      = 1
	colFrequency      = 2
	colInterval       = 3
	colMonthDay       = 4
	colWeekday        = 5
	colStart          = 6
	colEnd            = 7
	colTimezone       = 8
	colDirection      = 9
	colAmount         = 10
	colCategory       = 11
	colDesc           = 12
	colMerchant       = 13
	colAccount        = 14
	colActive         = 15
	colNextRun        = 16
	colLastRun        = 17
)

const (
	numOverrideFields = 7
	colOvTemplate     = 0
	colOvKey          = 1
	colOvAction       = 2
	colOvFields       = 3
	colOvAmount       = 4
	colOvCategory     = 5
	colOvDesc         = 6
)

// Names used in the fields column of overrides.csv.
const (
	fieldAmount      = "amount"
	fieldCategory    = "category_id"
	fieldDescription = "description"
)

// ReadTemplates reads all templates from a templates.csv reader.
func ReadTemplates(r io.Reader) ([]model.RecurrenceTemplate, error) {
	records, err := readRecords(r, numTemplateFields)
	if err != nil {
		return nil, fmt.Errorf("reading templates CSV: %w", err)
	}

	var out []model.RecurrenceTemplate
	for i, rec := range records {
		t, err := UnmarshalTemplate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// WriteTemplates writes templates to a templates.csv writer (including header).
func WriteTemplates(w io.Writer, tpls []model.RecurrenceTemplate) error {
	rows := make([][]string, len(tpls))
	for i, t := range tpls {
		rows[i] = MarshalTemplate(t)
	}
	return writeRecords(w, TemplateHeader, rows)
}

// ReadOverrides reads all overrides from an overrides.csv reader.
func ReadOverrides(r io.Reader) ([]model.Override, error) {
	records, err := readRecords(r, numOverrideFields)
	if err != nil {
		return nil, fmt.Errorf("reading overrides CSV: %w", err)
	}

	var out []model.Override
	for i, rec := range records {
		o, err := UnmarshalOverride(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// WriteOverrides writes overrides to an overrides.csv writer (including header).
func WriteOverrides(w io.Writer, ovs []model.Override) error {
	rows := make([][]string, len(ovs))
	for i, o := range ovs {
		rows[i] = MarshalOverride(o)
	}
	return writeRecords(w, OverrideHeader, rows)
}

func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	// Skip header row.
	return records[1:], nil
}

func writeRecords(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTemplate converts a template to a CSV row.
func MarshalTemplate(t model.RecurrenceTemplate) []string {
	row := make([]string, numTemplateFields)
	row[colID] = t.ID
	row[colHousehold] = t.HouseholdID
	row[colFrequency] = string(t.Frequency)
	row[colInterval] = strconv.Itoa(t.Interval)
	if t.ByMonthDay != 0 {
		row[colMonthDay] = strconv.Itoa(t.ByMonthDay)
	}
	days := make([]string, len(t.ByWeekday))
	for i, wd := range t.ByWeekday {
		days[i] = strconv.Itoa(int(wd))
	}
	row[colWeekday] = strings.Join(days, ";")
	row[colStart] = formatDate(&t.StartDate)
	row[colEnd] = formatDate(t.EndDate)
	row[colTimezone] = t.Timezone
	row[colDirection] = string(t.Direction)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCategory] = t.CategoryID
	row[colDesc] = t.Description
	row[colMerchant] = t.Merchant
	row[colAccount] = t.AccountID
	row[colActive] = strconv.FormatBool(t.IsActive)
	row[colNextRun] = formatDate(t.NextRunAt)
	row[colLastRun] = formatDate(t.LastRunAt)
	return row
}

// UnmarshalTemplate converts a CSV row to a template.
func UnmarshalTemplate(record []string) (model.RecurrenceTemplate, error) {
	if len(record) != numTemplateFields {
		return model.RecurrenceTemplate{}, fmt.Errorf("expected %d fields, got %d", numTemplateFields, len(record))
	}

	interval, err := strconv.Atoi(record[colInterval])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing interval %q: %w", record[colInterval], err)
	}

	var monthDay int
	if record[colMonthDay] != "" {
		monthDay, err = strconv.Atoi(record[colMonthDay])
		if err != nil {
			return model.RecurrenceTemplate{}, fmt.Errorf("parsing by_month_day %q: %w", record[colMonthDay], err)
		}
	}

	var weekdays []time.Weekday
	if record[colWeekday] != "" {
		for _, part := range strings.Split(record[colWeekday], ";") {
			wd, err := strconv.Atoi(part)
			if err != nil {
				return model.RecurrenceTemplate{}, fmt.Errorf("parsing by_weekday %q: %w", record[colWeekday], err)
			}
			weekdays = append(weekdays, time.Weekday(wd))
		}
	}

	start, err := parseDate(record[colStart])
	if err != nil || start == nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing start_date %q: %w", record[colStart], errOrMissing(err))
	}
	end, err := parseDate(record[colEnd])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing end_date %q: %w", record[colEnd], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	active, err := strconv.ParseBool(record[colActive])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing is_active %q: %w", record[colActive], err)
	}

	nextRun, err := parseDate(record[colNextRun])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing next_run_at %q: %w", record[colNextRun], err)
	}
	lastRun, err := parseDate(record[colLastRun])
	if err != nil {
		return model.RecurrenceTemplate{}, fmt.Errorf("parsing last_run_at %q: %w", record[colLastRun], err)
	}

	return model.RecurrenceTemplate{
		ID:          record[colID],
		HouseholdID: record[colHousehold],
		Frequency:   model.Frequency(record[colFrequency]),
		Interval:    interval,
		ByMonthDay:  monthDay,
		ByWeekday:   weekdays,
		StartDate:   *start,
		EndDate:     end,
		Timezone:    record[colTimezone],
		Direction:   model.Direction(record[colDirection]),
		Amount:      amount,
		CategoryID:  record[colCategory],
		Description: record[colDesc],
		Merchant:    record[colMerchant],
		AccountID:   record[colAccount],
		IsActive:    active,
		NextRunAt:   nextRun,
		LastRunAt:   lastRun,
	}, nil
}

// MarshalOverride converts an override to a CSV row. The fields column names
// every replacement field that is set, so an explicitly empty value survives
// a reload.
func MarshalOverride(o model.Override) []string {
	row := make([]string, numOverrideFields)
	row[colOvTemplate] = o.TemplateID
	row[colOvKey] = o.InstanceKey
	row[colOvAction] = string(o.Action)
	var set []string
	if o.Amount != nil {
		set = append(set, fieldAmount)
		row[colOvAmount] = o.Amount.StringFixed(2)
	}
	if o.CategoryID != nil {
		set = append(set, fieldCategory)
		row[colOvCategory] = *o.CategoryID
	}
	if o.Description != nil {
		set = append(set, fieldDescription)
		row[colOvDesc] = *o.Description
	}
	row[colOvFields] = strings.Join(set, ";")
	return row
}

// UnmarshalOverride converts a CSV row to an override.
func UnmarshalOverride(record []string) (model.Override, error) {
	if len(record) != numOverrideFields {
		return model.Override{}, fmt.Errorf("expected %d fields, got %d", numOverrideFields, len(record))
	}
	if _, err := id.ParseInstanceKey(record[colOvKey], time.UTC); err != nil {
		return model.Override{}, err
	}

	o := model.Override{
		TemplateID:  record[colOvTemplate],
		InstanceKey: record[colOvKey],
		Action:      model.OverrideAction(record[colOvAction]),
	}
	switch o.Action {
	case model.OverrideSkip, model.OverrideModify:
	default:
		return model.Override{}, fmt.Errorf("unknown override action %q", record[colOvAction])
	}

	// A non-empty value counts as set even when the fields column omits it.
	listed := map[string]bool{}
	if record[colOvFields] != "" {
		for _, name := range strings.Split(record[colOvFields], ";") {
			switch name {
			case fieldAmount, fieldCategory, fieldDescription:
				listed[name] = true
			default:
				return model.Override{}, fmt.Errorf("unknown override field %q", name)
			}
		}
	}

	if listed[fieldAmount] || record[colOvAmount] != "" {
		amt, err := decimal.NewFromString(record[colOvAmount])
		if err != nil {
			return model.Override{}, fmt.Errorf("parsing amount %q: %w", record[colOvAmount], err)
		}
		o.Amount = &amt
	}
	if listed[fieldCategory] || record[colOvCategory] != "" {
		cat := record[colOvCategory]
		o.CategoryID = &cat
	}
	if listed[fieldDescription] || record[colOvDesc] != "" {
		desc := record[colOvDesc]
		o.Description = &desc
	}
	return o, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func errOrMissing(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("missing date")
}
