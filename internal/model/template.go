package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the unit a template's interval counts in.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the four known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Direction is the money-flow direction of a transaction.
type Direction string

const (
	DirectionIncome   Direction = "income"
	DirectionExpense  Direction = "expense"
	DirectionTransfer Direction = "transfer"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense || d == DirectionTransfer
}

// RecurrenceTemplate is a schedule plus the payload copied into each occurrence.
type RecurrenceTemplate struct {
	ID          string
	HouseholdID string

	Frequency  Frequency
	Interval   int            // every N frequency units, >= 1
	ByMonthDay int            // 1-31, monthly only; 0 = use the start date's day
	ByWeekday  []time.Weekday // weekly only; empty = the start date's weekday
	StartDate  time.Time      // inclusive
	EndDate    *time.Time     // inclusive, nil = open-ended
	Timezone   string         // opaque label, never used for arithmetic

	Direction   Direction
	Amount      decimal.Decimal
	CategoryID  string
	Description string
	Merchant    string
	AccountID   string

	IsActive  bool
	NextRunAt *time.Time
	LastRunAt *time.Time
}

// OverrideAction says what an override does to its occurrence.
type OverrideAction string

const (
	OverrideSkip   OverrideAction = "skip"
	OverrideModify OverrideAction = "modify"
)

// Override pins an exception to one occurrence of a template.
// At most one exists per (TemplateID, InstanceKey).
type Override struct {
	TemplateID  string
	InstanceKey string // "YYYY-MM-DD"
	Action      OverrideAction

	// Replacement fields for OverrideModify; nil falls back to the template.
	Amount      *decimal.Decimal
	CategoryID  *string
	Description *string
}

// Occurrence is one computed, dated instance of a template. Never persisted as-is.
type Occurrence struct {
	TemplateID   string
	Date         time.Time
	InstanceKey  string
	Direction    Direction
	Amount       decimal.Decimal
	CategoryID   string
	Description  string
	Merchant     string
	AccountID    string
	IsOverridden bool
	IsSkipped    bool
}
