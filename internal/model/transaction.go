package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a raw historical transaction fed to the pattern miner.
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Merchant    string
	Amount      decimal.Decimal // always non-negative; Direction carries the sign
	Direction   Direction
}

// Counterparty returns the merchant label, falling back to the description.
func (t Transaction) Counterparty() string {
	if t.Merchant != "" {
		return t.Merchant
	}
	return t.Description
}

// TransactionPattern is a recurring obligation inferred from history.
// It is a proposal only; accepting it creates a RecurrenceTemplate.
type TransactionPattern struct {
	Counterparty           string
	NormalizedCounterparty string
	AvgAmount              decimal.Decimal
	AmountStdDev           float64
	Count                  int
	Transactions           []Transaction // sorted by date ascending

	Frequency  Frequency
	Interval   int
	DayOfMonth int // monthly only, 0 otherwise

	Confidence float64 // [0, 0.95]
	Reason     string
}

// LastDate returns the date of the most recent supporting transaction.
func (p TransactionPattern) LastDate() time.Time {
	if len(p.Transactions) == 0 {
		return time.Time{}
	}
	return p.Transactions[len(p.Transactions)-1].Date
}
