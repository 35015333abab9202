package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "entry_id,date,template_id,instance_key,direction,amount,category_id,description,merchant,account_id"

const (
	numFields    = 10
	colEntryID   = 0
	colDate      = 1
	colTemplate  = 2
	colKey       = 3
	colDirection = 4
	colAmount    = 5
	colCategory  = 6
	colDesc      = 7
	colMerchant  = 8
	colAccount   = 9
)

// ReadEntries reads all entries from a ledger.csv reader.
func ReadEntries(r io.Reader) ([]model.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.LedgerEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a ledger.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntries appends entries to an existing ledger.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an entry to a CSV row.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, numFields)
	row[colEntryID] = e.EntryID
	row[colDate] = e.Date.Format(id.InstanceKeyFormat)
	row[colTemplate] = e.TemplateID
	row[colKey] = e.InstanceKey
	row[colDirection] = string(e.Direction)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colCategory] = e.CategoryID
	row[colDesc] = e.Description
	row[colMerchant] = e.Merchant
	row[colAccount] = e.AccountID
	return row
}

// UnmarshalEntry converts a CSV row to an entry.
func UnmarshalEntry(record []string) (model.LedgerEntry, error) {
	if len(record) != numFields {
		return model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(id.InstanceKeyFormat, record[colDate])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.LedgerEntry{
		EntryID:     record[colEntryID],
		Date:        date,
		TemplateID:  record[colTemplate],
		InstanceKey: record[colKey],
		Direction:   model.Direction(record[colDirection]),
		Amount:      amount,
		CategoryID:  record[colCategory],
		Description: record[colDesc],
		Merchant:    record[colMerchant],
		AccountID:   record[colAccount],
	}, nil
}
