package patterns

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hearth/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func expense(merchant string, t time.Time, amount string) model.Transaction {
	return model.Transaction{
		ID:          merchant + "-" + t.Format("20060102"),
		Date:        t,
		Description: merchant + " purchase",
		Merchant:    merchant,
		Amount:      decimal.RequireFromString(amount),
		Direction:   model.DirectionExpense,
	}
}

var now = date(2024, 5, 1)

func netflix() []model.Transaction {
	return []model.Transaction{
		expense("Netflix", date(2024, 1, 15), "39"),
		expense("Netflix", date(2024, 2, 15), "39"),
		expense("Netflix", date(2024, 3, 15), "39"),
		expense("Netflix", date(2024, 4, 15), "40"),
	}
}

func TestDetect_MonthlySubscription(t *testing.T) {
	found := Detect(netflix(), DefaultConfig(), now)
	require.Len(t, found, 1)

	p := found[0]
	assert.Equal(t, "Netflix", p.Counterparty)
	assert.Equal(t, "netflix", p.NormalizedCounterparty)
	assert.Equal(t, model.FrequencyMonthly, p.Frequency)
	assert.Equal(t, 1, p.Interval)
	assert.Equal(t, 15, p.DayOfMonth)
	assert.Equal(t, 4, p.Count)
	assert.Len(t, p.Transactions, 4)
	assert.Equal(t, "39.25", p.AvgAmount.StringFixed(2))
	assert.InDelta(t, 0.433, p.AmountStdDev, 0.001)
	assert.GreaterOrEqual(t, p.Confidence, 0.8)
	assert.LessOrEqual(t, p.Confidence, MaxConfidence)
	assert.Equal(t, "4 payments across 4 months, avg 39.25 every ~30 days", p.Reason)
	assert.Equal(t, date(2024, 4, 15), p.LastDate())
}

func TestDetect_UnsortedInput(t *testing.T) {
	txns := netflix()
	txns[0], txns[3] = txns[3], txns[0]

	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 1)
	assert.Equal(t, date(2024, 1, 15), found[0].Transactions[0].Date)
	assert.Equal(t, date(2024, 4, 15), found[0].LastDate())
}

func TestDetect_SameMonthDuplicatesRejected(t *testing.T) {
	txns := []model.Transaction{
		expense("Corner Cafe", date(2024, 3, 2), "4.50"),
		expense("Corner Cafe", date(2024, 3, 9), "4.50"),
		expense("Corner Cafe", date(2024, 3, 16), "4.50"),
		expense("Corner Cafe", date(2024, 3, 23), "4.50"),
		expense("Corner Cafe", date(2024, 3, 30), "4.50"),
	}
	assert.Empty(t, Detect(txns, DefaultConfig(), now))
	assert.Empty(t, Detect(txns[:2], DefaultConfig(), now))
}

func TestDetect_InconsistentAmountsRejected(t *testing.T) {
	txns := []model.Transaction{
		expense("Grocer", date(2024, 1, 10), "20"),
		expense("Grocer", date(2024, 2, 10), "180"),
		expense("Grocer", date(2024, 3, 10), "65"),
	}
	assert.Empty(t, Detect(txns, DefaultConfig(), now))
}

func TestDetect_IrregularIntervalsRejected(t *testing.T) {
	txns := []model.Transaction{
		expense("Gym", date(2024, 1, 1), "30"),
		expense("Gym", date(2024, 1, 31), "30"),
		expense("Gym", date(2024, 3, 25), "30"),
		expense("Gym", date(2024, 4, 5), "30"),
	}
	assert.Empty(t, Detect(txns, DefaultConfig(), now))
}

func TestDetect_IgnoresIncomeAndOldTransactions(t *testing.T) {
	salary := func(d time.Time) model.Transaction {
		tx := expense("Employer Ltd", d, "3000")
		tx.Direction = model.DirectionIncome
		return tx
	}
	txns := []model.Transaction{
		salary(date(2024, 1, 25)),
		salary(date(2024, 2, 25)),
		salary(date(2024, 3, 25)),
		// Outside the six-month lookback.
		expense("Old Magazine", date(2023, 6, 1), "9"),
		expense("Old Magazine", date(2023, 7, 1), "9"),
		expense("Old Magazine", date(2023, 8, 1), "9"),
	}
	assert.Empty(t, Detect(txns, DefaultConfig(), now))

	cfg := DefaultConfig()
	cfg.LookbackMonths = 12
	found := Detect(txns, cfg, now)
	require.Len(t, found, 1)
	assert.Equal(t, "old magazine", found[0].NormalizedCounterparty)
}

func TestDetect_GroupsByNormalizedCounterparty(t *testing.T) {
	txns := []model.Transaction{
		expense("Spotify AB", date(2024, 1, 3), "10.99"),
		expense("  SPOTIFY   AB ", date(2024, 2, 3), "10.99"),
		expense("Spotify AB Ltd.", date(2024, 3, 3), "10.99"),
	}
	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 1)
	assert.Equal(t, "spotify ab", found[0].NormalizedCounterparty)
	assert.Equal(t, 3, found[0].Count)
	assert.Equal(t, "Spotify AB Ltd.", found[0].Counterparty)
}

func TestDetect_FallsBackToDescription(t *testing.T) {
	var txns []model.Transaction
	for _, d := range []time.Time{date(2024, 1, 7), date(2024, 2, 7), date(2024, 3, 7)} {
		tx := expense("", d, "12")
		tx.Description = "CITY WATER"
		txns = append(txns, tx)
	}
	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 1)
	assert.Equal(t, "city water", found[0].NormalizedCounterparty)
}

func TestDetect_SortedByConfidence(t *testing.T) {
	txns := []model.Transaction{
		// Two payments: lower count score.
		expense("Insurance Co", date(2024, 2, 20), "80"),
		expense("Insurance Co", date(2024, 3, 20), "80"),
	}
	txns = append(txns, netflix()...)

	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 2)
	assert.Equal(t, "netflix", found[0].NormalizedCounterparty)
	assert.Equal(t, "insurance", found[1].NormalizedCounterparty)
	assert.Greater(t, found[0].Confidence, found[1].Confidence)
}

func TestDetect_ConfidenceBlend(t *testing.T) {
	// Two identical payments 29 days apart: amount and interval consistency are 1.
	txns := []model.Transaction{
		expense("Phone", date(2024, 2, 1), "25"),
		expense("Phone", date(2024, 3, 1), "25"),
	}
	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 1)
	// 0.3*0.6 + 0.4*1 + 0.3*1
	assert.InDelta(t, 0.88, found[0].Confidence, 1e-9)
}

func TestDetect_ConfidenceCapped(t *testing.T) {
	var txns []model.Transaction
	for m := 1; m <= 4; m++ {
		txns = append(txns, expense("Rent", date(2024, m, 1), "1500"))
	}
	found := Detect(txns, DefaultConfig(), now)
	require.Len(t, found, 1)
	assert.InDelta(t, MaxConfidence, found[0].Confidence, 1e-9)
}

func TestDetect_WeeklyAndYearly(t *testing.T) {
	var weekly []model.Transaction
	for d := date(2024, 3, 4); d.Before(date(2024, 4, 20)); d = d.AddDate(0, 0, 7) {
		weekly = append(weekly, expense("Meal Kit", d, "60"))
	}
	found := Detect(weekly, DefaultConfig(), now)
	require.Len(t, found, 1)
	assert.Equal(t, model.FrequencyWeekly, found[0].Frequency)
	assert.Equal(t, 1, found[0].Interval)
	assert.Zero(t, found[0].DayOfMonth)

	yearly := []model.Transaction{
		expense("Domain Registrar", date(2022, 4, 10), "15"),
		expense("Domain Registrar", date(2023, 4, 10), "15"),
		expense("Domain Registrar", date(2024, 4, 9), "15"),
	}
	cfg := DefaultConfig()
	cfg.LookbackMonths = 36
	found = Detect(yearly, cfg, now)
	require.Len(t, found, 1)
	assert.Equal(t, model.FrequencyYearly, found[0].Frequency)
	assert.Equal(t, 1, found[0].Interval)
}

func TestDetect_Empty(t *testing.T) {
	assert.Empty(t, Detect(nil, DefaultConfig(), now))
	assert.Empty(t, Detect([]model.Transaction{expense("", now, "1")}, DefaultConfig(), now))
}

func TestDetect_ZeroConfigUsesSaneDefaults(t *testing.T) {
	found := Detect(netflix(), Config{AmountConsistencyThreshold: 0.85, DateVarianceDaysTolerance: 3}, now)
	assert.Len(t, found, 1)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		days     float64
		freq     model.Frequency
		interval int
	}{
		{7, model.FrequencyWeekly, 1},
		{6, model.FrequencyWeekly, 1},
		{8, model.FrequencyWeekly, 1},
		{14, model.FrequencyWeekly, 2},
		{30.4, model.FrequencyMonthly, 1},
		{25, model.FrequencyMonthly, 1},
		{35, model.FrequencyMonthly, 1},
		{61, model.FrequencyMonthly, 2},
		{91, model.FrequencyMonthly, 3},
		{365, model.FrequencyYearly, 1},
		{182, model.FrequencyMonthly, 6},
		{45, model.FrequencyMonthly, 2},
		{3, model.FrequencyMonthly, 1},
		{10, model.FrequencyMonthly, 1},
	}
	for _, tt := range tests {
		freq, interval := classify(tt.days)
		assert.Equal(t, tt.freq, freq, "classify(%v)", tt.days)
		assert.Equal(t, tt.interval, interval, "classify(%v)", tt.days)
	}
}

func TestNormalizeCounterparty(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Netflix", "netflix"},
		{"  Netflix, Inc. ", "netflix"},
		{"ACME Holdings LLC", "acme holdings"},
		{"Foo Co Ltd", "foo"},
		{"British Gas Limited", "british gas"},
		{"The   Coffee  Company", "the coffee"},
		{"Costco", "costco"},
		{"Co", "co"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCounterparty(tt.in), "NormalizeCounterparty(%q)", tt.in)
	}
}
