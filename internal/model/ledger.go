package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a materialized occurrence in the household ledger.
type LedgerEntry struct {
	EntryID     string
	Date        time.Time
	TemplateID  string
	InstanceKey string
	Direction   Direction
	Amount      decimal.Decimal
	CategoryID  string
	Description string
	Merchant    string
	AccountID   string
}

// EntryKey identifies the occurrence an entry was generated from.
type EntryKey struct {
	TemplateID  string
	InstanceKey string
}

// Key returns the (template, instance) pair used for deduplication.
func (e LedgerEntry) Key() EntryKey {
	return EntryKey{TemplateID: e.TemplateID, InstanceKey: e.InstanceKey}
}

// EntryFromOccurrence converts an occurrence into a ledger row.
func EntryFromOccurrence(entryID string, o Occurrence) LedgerEntry {
	return LedgerEntry{
		EntryID:     entryID,
		Date:        o.Date,
		TemplateID:  o.TemplateID,
		InstanceKey: o.InstanceKey,
		Direction:   o.Direction,
		Amount:      o.Amount,
		CategoryID:  o.CategoryID,
		Description: o.Description,
		Merchant:    o.Merchant,
		AccountID:   o.AccountID,
	}
}

// Category is a row in the household category chart.
type Category struct {
	ID        string
	Name      string
	Direction Direction
	ParentID  string // "" = top-level
}
