package recurrence

import (
	"time"

	"github.com/cleared-dev/hearth/internal/model"
)

// schedule is a template's recurrence rule reduced to calendar-date arithmetic.
// Occurrences are grouped into periods: period n is the n-th application of the
// step rule to the start date.
type schedule struct {
	freq     model.Frequency
	interval int
	start    time.Time
	end      *time.Time
	loc      *time.Location
	monthDay int
	weekdays [7]bool
	byDays   bool
}

func newSchedule(t model.RecurrenceTemplate) schedule {
	loc := t.StartDate.Location()
	s := schedule{
		freq:     t.Frequency,
		interval: t.Interval,
		loc:      loc,
		start:    dateIn(t.StartDate, loc),
		monthDay: t.ByMonthDay,
	}
	if s.monthDay == 0 {
		s.monthDay = s.start.Day()
	}
	if t.EndDate != nil {
		end := dateIn(*t.EndDate, loc)
		s.end = &end
	}
	if t.Frequency == model.FrequencyWeekly {
		for _, wd := range t.ByWeekday {
			s.weekdays[wd] = true
			s.byDays = true
		}
	}
	return s
}

// date maps t's wall-clock calendar date onto midnight in the schedule's location.
func (s schedule) date(t time.Time) time.Time {
	return dateIn(t, s.loc)
}

// period returns the occurrence dates of period n, ascending. Every date in
// period n precedes every date in period n+1.
func (s schedule) period(n int) []time.Time {
	switch s.freq {
	case model.FrequencyDaily:
		return []time.Time{s.start.AddDate(0, 0, n*s.interval)}
	case model.FrequencyWeekly:
		base := s.start.AddDate(0, 0, 7*s.interval*n)
		if !s.byDays {
			return []time.Time{base}
		}
		var dates []time.Time
		for d := 0; d < 7; d++ {
			c := base.AddDate(0, 0, d)
			if s.weekdays[c.Weekday()] {
				dates = append(dates, c)
			}
		}
		return dates
	case model.FrequencyMonthly:
		if n == 0 {
			return []time.Time{s.start}
		}
		return []time.Time{addMonths(s.start, n*s.interval, s.monthDay)}
	case model.FrequencyYearly:
		if n == 0 {
			return []time.Time{s.start}
		}
		return []time.Time{addMonths(s.start, 12*n*s.interval, s.start.Day())}
	}
	return nil
}

// firstPeriod returns a period index no later than the first period holding
// a date on or after target.
func (s schedule) firstPeriod(target time.Time) int {
	if !target.After(s.start) {
		return 0
	}
	var n int
	switch s.freq {
	case model.FrequencyDaily:
		n = daysBetween(s.start, target) / s.interval
	case model.FrequencyWeekly:
		n = daysBetween(s.start, target) / (7 * s.interval)
	case model.FrequencyMonthly:
		n = monthsBetween(s.start, target) / s.interval
	case model.FrequencyYearly:
		n = (target.Year() - s.start.Year()) / s.interval
	}
	if n > 0 {
		n--
	}
	return n
}

// next returns the first scheduled date on or after target, or false once
// the schedule has ended.
func (s schedule) next(target time.Time) (time.Time, bool) {
	for n := s.firstPeriod(target); ; n++ {
		for _, d := range s.period(n) {
			if d.Before(target) {
				continue
			}
			if s.end != nil && d.After(*s.end) {
				return time.Time{}, false
			}
			return d, true
		}
	}
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// addMonths moves t forward by months, landing on day clamped to the target month's length.
func addMonths(t time.Time, months, day int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)
	return time.Date(year, month, min(day, DaysInMonth(year, month)), 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
