package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hearth/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Card processors whose name precedes the merchant in "SQ *MERCHANT" labels.
var processorPrefixes = map[string]bool{
	"SQ":     true,
	"TST":    true,
	"SP":     true,
	"PP":     true,
	"PAYPAL": true,
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Negative amounts become expenses and positive
// amounts income; the stored amount is always non-negative.
func (p *ChaseParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	seen := make(map[string]int)
	for i, rec := range records[1:] {
		txn, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		seen[txn.ID]++
		if n := seen[txn.ID]; n > 1 {
			txn.ID = fmt.Sprintf("%s_%d", txn.ID, n)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseChaseRow(rec []string) (model.Transaction, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	dir := model.DirectionIncome
	if amount.IsNegative() {
		dir = model.DirectionExpense
	}

	desc := rec[chaseColDesc]
	return model.Transaction{
		ID:          makeChaseRef(date, desc),
		Date:        date,
		Description: desc,
		Merchant:    merchantFrom(desc),
		Amount:      amount.Abs(),
		Direction:   dir,
	}, nil
}

// makeChaseRef creates a reference like chase_20250103_GITHUB.
func makeChaseRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), prefix)
}

// merchantFrom extracts the merchant from a bank description:
// "SQ *BLUE BOTTLE" -> "BLUE BOTTLE", "GITHUB *PRO" -> "GITHUB",
// "NETFLIX.COM 866-579-7172 CA" -> "NETFLIX.COM".
func merchantFrom(desc string) string {
	label := strings.TrimSpace(desc)
	if head, tail, ok := strings.Cut(label, "*"); ok {
		if processorPrefixes[strings.ToUpper(strings.TrimSpace(head))] {
			label = tail
		} else {
			label = head
		}
	}

	var kept []string
	for _, tok := range strings.Fields(label) {
		if strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
			break
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(desc)
	}
	return strings.Join(kept, " ")
}
