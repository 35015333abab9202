package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/patterns"
)

// FileName is the config file at the root of a household directory.
const FileName = "hearth.yaml"

// Config represents the top-level hearth.yaml configuration.
type Config struct {
	Household  HouseholdConfig  `yaml:"household"`
	Import     ImportConfig     `yaml:"import"`
	Detection  DetectionConfig  `yaml:"detection"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Git        GitConfig        `yaml:"git"`
}

// HouseholdConfig identifies the household. Timezone is a label stamped on
// new templates; no date math uses it.
type HouseholdConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// ImportConfig selects the bank CSV parser for import/.
type ImportConfig struct {
	Format         string `yaml:"format"`
	DefaultAccount string `yaml:"default_account"`
}

// DetectionConfig holds the pattern miner thresholds.
type DetectionConfig struct {
	LookbackMonths    int     `yaml:"lookback_months"`
	MinOccurrences    int     `yaml:"min_occurrences"`
	AmountConsistency float64 `yaml:"amount_consistency"`
	DateVarianceDays  float64 `yaml:"date_variance_days"`
}

// GenerationConfig controls how far ahead generate materializes entries.
type GenerationConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a hearth.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new household.
func Default(householdName, timezone string) *Config {
	d := patterns.DefaultConfig()
	return &Config{
		Household: HouseholdConfig{
			ID:       id.NewHouseholdID(),
			Name:     householdName,
			Timezone: timezone,
		},
		Import: ImportConfig{
			Format:         "chase",
			DefaultAccount: "checking",
		},
		Detection: DetectionConfig{
			LookbackMonths:    d.LookbackMonths,
			MinOccurrences:    d.MinOccurrences,
			AmountConsistency: d.AmountConsistencyThreshold,
			DateVarianceDays:  d.DateVarianceDaysTolerance,
		},
		Generation: GenerationConfig{
			HorizonDays: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Hearth",
			AuthorEmail: "hearth@localhost",
		},
	}
}

// PatternConfig converts the detection section into miner thresholds.
// Zero fields fall back to the miner defaults.
func (c *Config) PatternConfig() patterns.Config {
	out := patterns.DefaultConfig()
	d := c.Detection
	if d.LookbackMonths > 0 {
		out.LookbackMonths = d.LookbackMonths
	}
	if d.MinOccurrences > 0 {
		out.MinOccurrences = d.MinOccurrences
	}
	if d.AmountConsistency > 0 {
		out.AmountConsistencyThreshold = d.AmountConsistency
	}
	if d.DateVarianceDays > 0 {
		out.DateVarianceDaysTolerance = d.DateVarianceDays
	}
	return out
}

// Horizon returns the generation cutoff relative to now.
func (c *Config) Horizon(now time.Time) time.Time {
	return now.AddDate(0, 0, c.Generation.HorizonDays)
}
