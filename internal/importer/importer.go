// Package importer parses bank CSV exports into transactions for the
// pattern miner.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/hearth/internal/model"
)

// Parser converts a bank CSV file into transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// ParseFiles parses every file with p and returns the combined
// transactions in file order.
func ParseFiles(p Parser, files []FileInfo) ([]model.Transaction, error) {
	var all []model.Transaction
	for _, fi := range files {
		f, err := os.Open(fi.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fi.Name, err)
		}
		txns, err := p.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fi.Name, err)
		}
		all = append(all, txns...)
	}
	return all, nil
}

// LoadHistory parses every CSV in <repoRoot>/import/ with the named format.
func LoadHistory(reg *Registry, repoRoot, format string) ([]model.Transaction, error) {
	p := reg.Get(format)
	if p == nil {
		return nil, fmt.Errorf("unknown import format %q", format)
	}
	files, err := Scan(repoRoot)
	if err != nil {
		return nil, err
	}
	return ParseFiles(p, files)
}
