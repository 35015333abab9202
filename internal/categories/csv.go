package categories

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/hearth/internal/model"
)

const (
	numFields    = 4
	colID        = 0
	colName      = 1
	colDirection = 2
	colParent    = 3
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		cat, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"category_id", "name", "direction", "parent_id"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, cat := range cats {
		if err := cw.Write(MarshalCategory(cat)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(cat model.Category) []string {
	row := make([]string, numFields)
	row[colID] = cat.ID
	row[colName] = cat.Name
	row[colDirection] = string(cat.Direction)
	row[colParent] = cat.ParentID
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Category{}, fmt.Errorf("empty category_id")
	}

	dir := model.Direction(record[colDirection])
	switch dir {
	case model.DirectionIncome, model.DirectionExpense, model.DirectionTransfer:
	default:
		return model.Category{}, fmt.Errorf("parsing direction %q: unknown direction", record[colDirection])
	}

	return model.Category{
		ID:        record[colID],
		Name:      record[colName],
		Direction: dir,
		ParentID:  record[colParent],
	}, nil
}
