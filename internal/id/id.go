package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InstanceKeyFormat is the layout of an occurrence's instance key.
const InstanceKeyFormat = "2006-01-02"

// InstanceKey returns the calendar date of t as "YYYY-MM-DD".
// The key never carries a zone offset; the wall-clock date in t's location is used.
func InstanceKey(t time.Time) string {
	return t.Format(InstanceKeyFormat)
}

// ParseInstanceKey parses "2024-12-01" into a midnight date in loc.
func ParseInstanceKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(InstanceKeyFormat, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instance key %q: %w", key, err)
	}
	return t, nil
}

// NewTemplateID returns a fresh template identifier.
func NewTemplateID() string {
	return uuid.NewString()
}

// NewHouseholdID returns a fresh household identifier.
func NewHouseholdID() string {
	return uuid.NewString()
}

// NewEntryID returns a fresh ledger entry identifier.
func NewEntryID() string {
	return uuid.NewString()
}

// ShortID returns the first 8 characters of an id for display.
// "6f1c2a9e-..." -> "6f1c2a9e"
func ShortID(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
