// Package patterns mines raw transaction history for recurring obligations.
package patterns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hearth/internal/model"
)

// Config tunes the detection filters.
type Config struct {
	LookbackMonths             int
	MinOccurrences             int
	AmountConsistencyThreshold float64
	DateVarianceDaysTolerance  float64
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		LookbackMonths:             6,
		MinOccurrences:             2,
		AmountConsistencyThreshold: 0.85,
		DateVarianceDaysTolerance:  3,
	}
}

// MaxConfidence is the ceiling on any pattern's confidence.
const MaxConfidence = 0.95

// Detect scans expense transactions dated within the lookback window ending at
// now and returns the recurring patterns it finds, highest confidence first.
// Each filter is a hard cut: a group that fails one yields no pattern.
func Detect(txns []model.Transaction, cfg Config, now time.Time) []model.TransactionPattern {
	if cfg.LookbackMonths <= 0 {
		cfg.LookbackMonths = DefaultConfig().LookbackMonths
	}
	cfg.MinOccurrences = max(cfg.MinOccurrences, 2)
	cutoff := now.AddDate(0, -cfg.LookbackMonths, 0)

	groups := make(map[string][]model.Transaction)
	for _, t := range txns {
		if t.Direction != model.DirectionExpense || t.Date.Before(cutoff) {
			continue
		}
		key := NormalizeCounterparty(t.Counterparty())
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	var found []model.TransactionPattern
	for key, group := range groups {
		if p, ok := analyze(key, group, cfg); ok {
			found = append(found, p)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].NormalizedCounterparty < found[j].NormalizedCounterparty
	})
	return found
}

func analyze(key string, group []model.Transaction, cfg Config) (model.TransactionPattern, bool) {
	if len(group) < cfg.MinOccurrences {
		return model.TransactionPattern{}, false
	}
	txns := append([]model.Transaction(nil), group...)
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	months := distinctMonths(txns)
	if months < cfg.MinOccurrences {
		return model.TransactionPattern{}, false
	}

	amounts := make([]float64, len(txns))
	total := decimal.Zero
	for i, t := range txns {
		amt := t.Amount.Abs()
		amounts[i] = amt.InexactFloat64()
		total = total.Add(amt)
	}
	avgAmount, amountSD := mean(amounts), stdDev(amounts)
	amountConsistency := consistency(avgAmount, amountSD)
	if amountConsistency < cfg.AmountConsistencyThreshold {
		return model.TransactionPattern{}, false
	}

	gaps := make([]float64, len(txns)-1)
	for i := 1; i < len(txns); i++ {
		gaps[i-1] = float64(daysBetween(txns[i-1].Date, txns[i].Date))
	}
	avgGap, gapSD := mean(gaps), stdDev(gaps)
	if gapSD > 2*cfg.DateVarianceDaysTolerance {
		return model.TransactionPattern{}, false
	}

	freq, interval := classify(avgGap)
	dayOfMonth := 0
	if freq == model.FrequencyMonthly {
		days := make([]float64, len(txns))
		for i, t := range txns {
			days[i] = float64(t.Date.Day())
		}
		dayOfMonth = int(math.Round(mean(days)))
	}

	countScore := math.Min(0.9, 0.3+float64(len(txns))*0.15)
	intervalConsistency := consistency(avgGap, gapSD)
	confidence := math.Min(MaxConfidence, 0.3*countScore+0.4*amountConsistency+0.3*intervalConsistency)

	avg := total.Div(decimal.NewFromInt(int64(len(txns)))).Round(2)
	return model.TransactionPattern{
		Counterparty:           txns[len(txns)-1].Counterparty(),
		NormalizedCounterparty: key,
		AvgAmount:              avg,
		AmountStdDev:           amountSD,
		Count:                  len(txns),
		Transactions:           txns,
		Frequency:              freq,
		Interval:               interval,
		DayOfMonth:             dayOfMonth,
		Confidence:             confidence,
		Reason: fmt.Sprintf("%d payments across %d months, avg %s every ~%d days",
			len(txns), months, avg.StringFixed(2), int(math.Round(avgGap))),
	}, true
}

// classify buckets an average gap in days into a frequency and interval.
func classify(avgDays float64) (model.Frequency, int) {
	switch {
	case avgDays >= 6 && avgDays <= 8:
		return model.FrequencyWeekly, 1
	case avgDays >= 12 && avgDays <= 16:
		return model.FrequencyWeekly, 2
	case avgDays >= 25 && avgDays <= 35:
		return model.FrequencyMonthly, 1
	case avgDays >= 55 && avgDays <= 70:
		return model.FrequencyMonthly, 2
	case avgDays >= 85 && avgDays <= 95:
		return model.FrequencyMonthly, 3
	case avgDays >= 345 && avgDays <= 380:
		return model.FrequencyYearly, 1
	}
	return model.FrequencyMonthly, max(1, int(math.Round(avgDays/30)))
}

func distinctMonths(txns []model.Transaction) int {
	seen := make(map[[2]int]struct{})
	for _, t := range txns {
		seen[[2]int{t.Date.Year(), int(t.Date.Month())}] = struct{}{}
	}
	return len(seen)
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
