// Package ledger stores materialized occurrences, one CSV per month under
// <root>/ledger/YYYY/MM/ledger.csv.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cleared-dev/hearth/internal/model"
)

// Service reads and appends ledger entries for a household root.
type Service struct {
	root string
}

// NewService creates a ledger Service.
func NewService(root string) *Service {
	return &Service{root: root}
}

// Append writes entries to their month's ledger.csv, skipping any whose
// (template, instance) key is already recorded or repeated within entries.
// Returns the entries actually written.
func (s *Service) Append(entries []model.LedgerEntry) ([]model.LedgerEntry, error) {
	seen, err := s.Keys()
	if err != nil {
		return nil, err
	}

	byMonth := make(map[[2]int][]model.LedgerEntry)
	var months [][2]int
	var written []model.LedgerEntry
	for _, e := range entries {
		if e.TemplateID != "" {
			if seen[e.Key()] {
				continue
			}
			seen[e.Key()] = true
		}
		m := [2]int{e.Date.Year(), int(e.Date.Month())}
		if _, ok := byMonth[m]; !ok {
			months = append(months, m)
		}
		byMonth[m] = append(byMonth[m], e)
		written = append(written, e)
	}

	for _, m := range months {
		if err := s.appendMonth(m[0], m[1], byMonth[m]); err != nil {
			return nil, err
		}
	}
	return written, nil
}

func (s *Service) appendMonth(year, month int, entries []model.LedgerEntry) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendEntries(f, entries); err != nil {
		return fmt.Errorf("appending entries: %w", err)
	}
	return nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.LedgerEntry, error) {
	return s.readFile(s.monthPath(year, month))
}

// ReadRange returns entries dated within [from, to], ordered by date.
func (s *Service) ReadRange(from, to time.Time) ([]model.LedgerEntry, error) {
	all, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []model.LedgerEntry
	for _, e := range all {
		if e.Date.Before(dateOf(from)) || e.Date.After(dateOf(to)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadAll returns every entry in the ledger, ordered by date.
func (s *Service) ReadAll() ([]model.LedgerEntry, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "ledger", "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "ledger.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing ledger files: %w", err)
	}
	sort.Strings(paths)

	var all []model.LedgerEntry
	for _, p := range paths {
		entries, err := s.readFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all, nil
}

// Keys returns the set of (template, instance) keys already materialized.
func (s *Service) Keys() (map[model.EntryKey]bool, error) {
	all, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[model.EntryKey]bool, len(all))
	for _, e := range all {
		if e.TemplateID != "" {
			seen[e.Key()] = true
		}
	}
	return seen, nil
}

func (s *Service) readFile(path string) ([]model.LedgerEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return entries, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, "ledger", fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "ledger.csv")
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
