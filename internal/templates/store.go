// Package templates persists recurrence templates and their per-occurrence
// overrides under <root>/recurring/.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/model"
	"github.com/cleared-dev/hearth/internal/recurrence"
)

var (
	// ErrNotFound is returned when no template matches an id.
	ErrNotFound = errors.New("template not found")
	// ErrAmbiguous is returned when an id prefix matches several templates.
	ErrAmbiguous = errors.New("template id is ambiguous")
)

const (
	dir           = "recurring"
	templatesFile = "templates.csv"
	overridesFile = "overrides.csv"
)

// Store holds a household's templates and overrides in memory.
// Mutations are persisted by Save.
type Store struct {
	root      string
	templates []model.RecurrenceTemplate
	overrides []model.Override
}

// NewStore creates an empty Store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Load reads recurring/templates.csv and recurring/overrides.csv. Missing files
// load as empty.
func Load(root string) (*Store, error) {
	s := NewStore(root)

	f, err := os.Open(filepath.Join(root, dir, templatesFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("opening templates: %w", err)
	default:
		defer f.Close()
		if s.templates, err = ReadTemplates(f); err != nil {
			return nil, fmt.Errorf("reading templates: %w", err)
		}
	}

	g, err := os.Open(filepath.Join(root, dir, overridesFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("opening overrides: %w", err)
	default:
		defer g.Close()
		if s.overrides, err = ReadOverrides(g); err != nil {
			return nil, fmt.Errorf("reading overrides: %w", err)
		}
	}

	return s, nil
}

// Save writes templates and overrides back to disk.
func (s *Store) Save() error {
	d := filepath.Join(s.root, dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return fmt.Errorf("creating recurring dir: %w", err)
	}

	if err := writeFile(filepath.Join(d, templatesFile), func(f *os.File) error {
		return WriteTemplates(f, s.templates)
	}); err != nil {
		return fmt.Errorf("writing templates: %w", err)
	}
	if err := writeFile(filepath.Join(d, overridesFile), func(f *os.File) error {
		return WriteOverrides(f, s.overrides)
	}); err != nil {
		return fmt.Errorf("writing overrides: %w", err)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// All returns every template in insertion order.
func (s *Store) All() []model.RecurrenceTemplate {
	return s.templates
}

// Active returns the templates that are currently scheduling.
func (s *Store) Active() []model.RecurrenceTemplate {
	var out []model.RecurrenceTemplate
	for _, t := range s.templates {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the template with the given id or unique id prefix.
func (s *Store) Get(ref string) (model.RecurrenceTemplate, error) {
	i, err := s.index(ref)
	if err != nil {
		return model.RecurrenceTemplate{}, err
	}
	return s.templates[i], nil
}

func (s *Store) index(ref string) (int, error) {
	if ref == "" {
		return -1, ErrNotFound
	}
	found := -1
	for i, t := range s.templates {
		if t.ID == ref {
			return i, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %q", ErrAmbiguous, ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return found, nil
}

// Add validates t, refreshes its cached next run relative to now, and stores it.
// An empty ID is replaced with a fresh one. Returns the stored template.
func (s *Store) Add(t model.RecurrenceTemplate, now time.Time) (model.RecurrenceTemplate, error) {
	if t.ID == "" {
		t.ID = id.NewTemplateID()
	}
	for _, existing := range s.templates {
		if existing.ID == t.ID {
			return model.RecurrenceTemplate{}, fmt.Errorf("template %s already exists", t.ID)
		}
	}
	if err := validate(t); err != nil {
		return model.RecurrenceTemplate{}, err
	}
	t = RefreshNextRun(t, now)
	s.templates = append(s.templates, t)
	return t, nil
}

// Update replaces the stored template with the same ID.
func (s *Store) Update(t model.RecurrenceTemplate) error {
	i, err := s.index(t.ID)
	if err != nil {
		return err
	}
	if s.templates[i].ID != t.ID {
		return fmt.Errorf("%w: %q", ErrNotFound, t.ID)
	}
	if err := validate(t); err != nil {
		return err
	}
	s.templates[i] = t
	return nil
}

// SetActive pauses or resumes a template and refreshes its next run.
// Resuming a paused template moves LastRunAt up to the day before now so
// generation never fills in the dates it was paused for.
func (s *Store) SetActive(ref string, active bool, now time.Time) (model.RecurrenceTemplate, error) {
	i, err := s.index(ref)
	if err != nil {
		return model.RecurrenceTemplate{}, err
	}
	t := s.templates[i]
	if active && !t.IsActive {
		t.LastRunAt = resumeMark(t, now)
	}
	t.IsActive = active
	t = RefreshNextRun(t, now)
	s.templates[i] = t
	return t, nil
}

func resumeMark(t model.RecurrenceTemplate, now time.Time) *time.Time {
	mark := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	if mark.Before(t.StartDate) {
		return t.LastRunAt
	}
	if t.LastRunAt != nil && !t.LastRunAt.Before(mark) {
		return t.LastRunAt
	}
	return &mark
}

// Overrides returns the overrides pinned to templateID.
func (s *Store) Overrides(templateID string) []model.Override {
	var out []model.Override
	for _, o := range s.overrides {
		if o.TemplateID == templateID {
			out = append(out, o)
		}
	}
	return out
}

// UpsertOverride stores o, replacing any override with the same
// (TemplateID, InstanceKey).
func (s *Store) UpsertOverride(o model.Override) error {
	if _, err := s.index(o.TemplateID); err != nil {
		return err
	}
	if _, err := id.ParseInstanceKey(o.InstanceKey, time.UTC); err != nil {
		return err
	}
	if o.Action != model.OverrideSkip && o.Action != model.OverrideModify {
		return fmt.Errorf("unknown override action %q", o.Action)
	}

	for i, existing := range s.overrides {
		if existing.TemplateID == o.TemplateID && existing.InstanceKey == o.InstanceKey {
			s.overrides[i] = o
			return nil
		}
	}
	s.overrides = append(s.overrides, o)
	return nil
}

// RefreshNextRun recomputes t's cached NextRunAt relative to from.
func RefreshNextRun(t model.RecurrenceTemplate, from time.Time) model.RecurrenceTemplate {
	next, ok := recurrence.NextRun(t, from)
	if !ok {
		t.NextRunAt = nil
		return t
	}
	t.NextRunAt = &next
	return t
}

func validate(t model.RecurrenceTemplate) error {
	if verrs := recurrence.Validate(recurrence.DraftOf(t)); len(verrs) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(recurrence.Messages(verrs), "; "))
	}
	return nil
}
