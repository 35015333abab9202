package categories

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/hearth/internal/model"
)

// Service provides in-memory lookup over the category chart.
type Service struct {
	cats []model.Category
	byID map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.Category) *Service {
	byID := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return &Service{cats: cats, byID: byID}
}

// Load reads categories/categories.csv from a household root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "categories", "categories.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories.
func (s *Service) All() []model.Category {
	return s.cats
}

// Get returns a category by ID.
func (s *Service) Get(id string) (model.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Exists reports whether a category ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByDirection returns all categories for the given direction.
func (s *Service) ByDirection(dir model.Direction) []model.Category {
	var result []model.Category
	for _, c := range s.cats {
		if c.Direction == dir {
			result = append(result, c)
		}
	}
	return result
}

// Save writes the chart to categories/categories.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	path := filepath.Join(dir, "categories.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.cats); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
