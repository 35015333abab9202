// Package recurrence expands recurrence templates into dated occurrences.
//
// Every function here is pure: no I/O, no clock reads. Invalid or inactive
// templates yield empty results rather than errors.
package recurrence

import (
	"time"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
)

// MaxOccurrences caps the occurrences a single Expand call returns.
// Output beyond the cap is silently dropped.
const MaxOccurrences = 1000

// Expand returns the occurrences of t dated within [rangeStart, rangeEnd],
// clipped to the template's own start and end, in ascending date order.
// Occurrences with a skip override are omitted; modify overrides replace the
// fields they set. Only the calendar dates of rangeStart and rangeEnd matter.
func Expand(t model.RecurrenceTemplate, rangeStart, rangeEnd time.Time, overrides []model.Override) []model.Occurrence {
	out, _ := ExpandCapped(t, rangeStart, rangeEnd, overrides)
	return out
}

// ExpandCapped is Expand that also reports whether MaxOccurrences cut the
// result short, i.e. whether at least one more occurrence falls in range.
func ExpandCapped(t model.RecurrenceTemplate, rangeStart, rangeEnd time.Time, overrides []model.Override) ([]model.Occurrence, bool) {
	if !schedulable(t) {
		return nil, false
	}
	s := newSchedule(t)

	from, to := s.date(rangeStart), s.date(rangeEnd)
	if from.Before(s.start) {
		from = s.start
	}
	if s.end != nil && to.After(*s.end) {
		to = *s.end
	}
	if to.Before(from) {
		return nil, false
	}

	byKey := indexOverrides(t.ID, overrides)

	var out []model.Occurrence
	for n := s.firstPeriod(from); ; n++ {
		for _, d := range s.period(n) {
			if d.Before(from) {
				continue
			}
			if d.After(to) {
				return out, false
			}
			key := id.InstanceKey(d)
			ov, ok := byKey[key]
			if ok && ov.Action == model.OverrideSkip {
				continue
			}
			if len(out) >= MaxOccurrences {
				return out, true
			}
			out = append(out, occurrence(t, d, key, ov, ok))
		}
	}
}

// NextRun returns the next scheduled date after from's calendar date. A start
// date still in the future is itself the next run. It returns false for inactive
// or invalid templates and once the schedule has passed its end date.
func NextRun(t model.RecurrenceTemplate, from time.Time) (time.Time, bool) {
	if !schedulable(t) {
		return time.Time{}, false
	}
	s := newSchedule(t)

	day := s.date(from)
	if s.end != nil && day.After(*s.end) {
		return time.Time{}, false
	}
	after := day.AddDate(0, 0, 1)
	if after.Before(s.start) {
		after = s.start
	}
	return s.next(after)
}

// FirstRun returns the first scheduled date of t.
func FirstRun(t model.RecurrenceTemplate) (time.Time, bool) {
	if !schedulable(t) {
		return time.Time{}, false
	}
	s := newSchedule(t)
	return s.next(s.start)
}

func schedulable(t model.RecurrenceTemplate) bool {
	return t.IsActive && len(Validate(DraftOf(t))) == 0
}

func indexOverrides(templateID string, overrides []model.Override) map[string]model.Override {
	byKey := make(map[string]model.Override, len(overrides))
	for _, ov := range overrides {
		if ov.TemplateID != "" && ov.TemplateID != templateID {
			continue
		}
		byKey[ov.InstanceKey] = ov
	}
	return byKey
}

func occurrence(t model.RecurrenceTemplate, date time.Time, key string, ov model.Override, hasOverride bool) model.Occurrence {
	o := model.Occurrence{
		TemplateID:  t.ID,
		Date:        date,
		InstanceKey: key,
		Direction:   t.Direction,
		Amount:      t.Amount,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Merchant:    t.Merchant,
		AccountID:   t.AccountID,
	}
	if !hasOverride || ov.Action != model.OverrideModify {
		return o
	}
	o.IsOverridden = true
	if ov.Amount != nil {
		o.Amount = *ov.Amount
	}
	if ov.CategoryID != nil {
		o.CategoryID = *ov.CategoryID
	}
	if ov.Description != nil {
		o.Description = *ov.Description
	}
	return o
}
