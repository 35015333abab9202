// Package scheduler materializes template occurrences into the ledger.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/ledger"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
	"github.com/cleared-dev/hearth/internal/templates"
)

// TemplateResult reports one template's generation pass.
type TemplateResult struct {
	TemplateID  string
	Description string
	Created     int
	// Capped is set when recurrence.MaxOccurrences left occurrences up to
	// UpTo unexpanded; the next pass resumes after LastRunAt.
	Capped bool
}

// Result summarizes a Generate call.
type Result struct {
	UpTo      time.Time
	Created   int
	Templates []TemplateResult
}

// Generate expands every active template from just after its last run (or its
// start date) through upTo, appends occurrences not yet in the ledger, and
// updates each template's LastRunAt and NextRunAt. The store is saved on
// success. Running it again with the same upTo creates nothing.
//
// On error, rows already appended for earlier templates (and for the failing
// one, if the store update failed) stay in the ledger while the store is not
// saved. Retrying is safe: the ledger skips keys it already holds.
func Generate(store *templates.Store, led *ledger.Service, upTo time.Time, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := Result{UpTo: upTo}

	for _, t := range store.Active() {
		from := t.StartDate
		if t.LastRunAt != nil {
			from = t.LastRunAt.AddDate(0, 0, 1)
		}

		occs, capped := recurrence.ExpandCapped(t, from, upTo, store.Overrides(t.ID))
		entries := make([]model.LedgerEntry, 0, len(occs))
		for _, o := range occs {
			entries = append(entries, model.EntryFromOccurrence(id.NewEntryID(), o))
		}

		written, err := led.Append(entries)
		if err != nil {
			return Result{}, fmt.Errorf("generating %s: %w", id.ShortID(t.ID), err)
		}

		if len(occs) > 0 {
			last := occs[len(occs)-1].Date
			t.LastRunAt = &last
		}
		t = templates.RefreshNextRun(t, upTo)
		if err := store.Update(t); err != nil {
			return Result{}, fmt.Errorf("updating %s: %w", id.ShortID(t.ID), err)
		}

		tr := TemplateResult{
			TemplateID:  t.ID,
			Description: t.Description,
			Created:     len(written),
			Capped:      capped,
		}
		res.Templates = append(res.Templates, tr)
		res.Created += tr.Created

		logger.Debug("template generated",
			"template", id.ShortID(t.ID),
			"from", id.InstanceKey(from),
			"created", tr.Created,
			"capped", tr.Capped,
		)
	}

	if err := store.Save(); err != nil {
		return Result{}, fmt.Errorf("saving templates: %w", err)
	}

	logger.Info("generation complete",
		"up_to", id.InstanceKey(upTo),
		"templates", len(res.Templates),
		"created", res.Created,
	)
	return res, nil
}
