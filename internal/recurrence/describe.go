package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/hearth/internal/model"
)

// Describe renders a human-readable summary of t's schedule,
// e.g. "Monthly on the 1st" or "Bi-weekly on Mon, Thu".
func Describe(t model.RecurrenceTemplate) string {
	interval := max(t.Interval, 1)

	switch t.Frequency {
	case model.FrequencyDaily:
		if interval == 1 {
			return "Daily"
		}
		return fmt.Sprintf("Every %d days", interval)

	case model.FrequencyWeekly:
		var s string
		switch interval {
		case 1:
			s = "Weekly"
		case 2:
			s = "Bi-weekly"
		default:
			s = fmt.Sprintf("Every %d weeks", interval)
		}
		if days := weekdayNames(t.ByWeekday); days != "" {
			s += " on " + days
		}
		return s

	case model.FrequencyMonthly:
		day := t.ByMonthDay
		if day == 0 {
			day = t.StartDate.Day()
		}
		if interval == 1 {
			return "Monthly on the " + Ordinal(day)
		}
		return fmt.Sprintf("Every %d months on the %s", interval, Ordinal(day))

	case model.FrequencyYearly:
		on := t.StartDate.Format("January 2")
		if interval == 1 {
			return "Yearly on " + on
		}
		return fmt.Sprintf("Every %d years on %s", interval, on)
	}
	return "No schedule"
}

// Ordinal formats n with its English ordinal suffix: 1st, 2nd, 3rd, 4th, 11th, 22nd.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func weekdayNames(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	names := make([]string, 0, len(sorted))
	for i, d := range sorted {
		if i > 0 && d == sorted[i-1] {
			continue
		}
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ", ")
}
