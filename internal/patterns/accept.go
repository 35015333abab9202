package patterns

import (
	"github.com/agnivade/levenshtein"

	"github.com/cleared-dev/hearth/internal/model"
)

// similarityThreshold is the levenshtein similarity above which two
// normalized counterparties are treated as the same merchant.
const similarityThreshold = 0.9

// ExcludeTemplated drops patterns whose counterparty already has an active
// template. Merchants match on normalized equality or near-equality.
func ExcludeTemplated(found []model.TransactionPattern, templates []model.RecurrenceTemplate) []model.TransactionPattern {
	var known []string
	for _, t := range templates {
		if !t.IsActive {
			continue
		}
		name := t.Merchant
		if name == "" {
			name = t.Description
		}
		if n := NormalizeCounterparty(name); n != "" {
			known = append(known, n)
		}
	}

	var out []model.TransactionPattern
	for _, p := range found {
		if !matchesAny(p.NormalizedCounterparty, known) {
			out = append(out, p)
		}
	}
	return out
}

func matchesAny(name string, known []string) bool {
	for _, k := range known {
		if k == name || similarity(k, name) >= similarityThreshold {
			return true
		}
	}
	return false
}

func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// TemplateParams carries the host-chosen fields of a template built from a pattern.
type TemplateParams struct {
	ID          string
	HouseholdID string
	CategoryID  string
	AccountID   string
	Timezone    string
}

// ToTemplate turns an accepted pattern into an active expense template that
// starts on the pattern's most recent supporting transaction.
func ToTemplate(p model.TransactionPattern, params TemplateParams) model.RecurrenceTemplate {
	return model.RecurrenceTemplate{
		ID:          params.ID,
		HouseholdID: params.HouseholdID,
		Frequency:   p.Frequency,
		Interval:    max(p.Interval, 1),
		ByMonthDay:  p.DayOfMonth,
		StartDate:   p.LastDate(),
		Timezone:    params.Timezone,
		Direction:   model.DirectionExpense,
		Amount:      p.AvgAmount,
		CategoryID:  params.CategoryID,
		Description: p.Counterparty,
		Merchant:    p.Counterparty,
		AccountID:   params.AccountID,
		IsActive:    true,
	}
}
