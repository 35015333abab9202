package recurrence

import (
	"fmt"
	"time"

	"github.com/cleared-dev/hearth/internal/model"
)

// ValidationError describes one violated schedule rule.
type ValidationError struct {
	Rule        string // field the rule applies to, e.g. "interval"
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Description)
}

// Draft is a possibly incomplete template schedule as entered by a user.
// Nil pointers mean "not provided".
type Draft struct {
	Frequency  model.Frequency
	Interval   *int
	ByMonthDay *int
	ByWeekday  []int
	StartDate  time.Time
	EndDate    *time.Time
}

// DraftOf returns the schedule fields of t as a Draft.
func DraftOf(t model.RecurrenceTemplate) Draft {
	interval := t.Interval
	d := Draft{
		Frequency: t.Frequency,
		Interval:  &interval,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
	}
	if t.ByMonthDay != 0 {
		day := t.ByMonthDay
		d.ByMonthDay = &day
	}
	for _, wd := range t.ByWeekday {
		d.ByWeekday = append(d.ByWeekday, int(wd))
	}
	return d
}

// Validate checks every schedule rule and returns all violations, not just the
// first. An empty result means the draft can be scheduled.
func Validate(d Draft) []ValidationError {
	var errs []ValidationError

	switch {
	case d.Frequency == "":
		errs = append(errs, ValidationError{Rule: "frequency", Description: "frequency is required"})
	case !d.Frequency.Valid():
		errs = append(errs, ValidationError{
			Rule:        "frequency",
			Description: fmt.Sprintf("unknown frequency %q", d.Frequency),
		})
	}

	if d.Interval != nil && *d.Interval < 1 {
		errs = append(errs, ValidationError{
			Rule:        "interval",
			Description: fmt.Sprintf("interval must be at least 1, got %d", *d.Interval),
		})
	}

	if d.ByMonthDay != nil && (*d.ByMonthDay < 1 || *d.ByMonthDay > 31) {
		errs = append(errs, ValidationError{
			Rule:        "by_month_day",
			Description: fmt.Sprintf("day of month must be between 1 and 31, got %d", *d.ByMonthDay),
		})
	}

	for _, wd := range d.ByWeekday {
		if wd < 0 || wd > 6 {
			errs = append(errs, ValidationError{
				Rule:        "by_weekday",
				Description: fmt.Sprintf("weekday must be between 0 and 6, got %d", wd),
			})
		}
	}

	if d.StartDate.IsZero() {
		errs = append(errs, ValidationError{Rule: "start_date", Description: "start date is required"})
	}

	if d.EndDate != nil && !d.StartDate.IsZero() && dateIn(*d.EndDate, time.UTC).Before(dateIn(d.StartDate, time.UTC)) {
		errs = append(errs, ValidationError{
			Rule: "end_date",
			Description: fmt.Sprintf("end date %s is before start date %s",
				d.EndDate.Format("2006-01-02"), d.StartDate.Format("2006-01-02")),
		})
	}

	return errs
}

// Messages returns the descriptions of errs.
func Messages(errs []ValidationError) []string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Description
	}
	return msgs
}
