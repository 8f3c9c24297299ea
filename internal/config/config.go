// Package config loads the CLI configuration from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/catalog"
	"github.com/gofhir/procvalidity/loader"
	"github.com/gofhir/procvalidity/scoring"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROCVALIDITY_LOG_LEVEL.
const EnvPrefix = "PROCVALIDITY"

// Config is the CLI configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Workers int           `mapstructure:"workers"`
	Issues  IssuesConfig  `mapstructure:"issues"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Scoring ScoringConfig `mapstructure:"scoring"`

	// dir resolves relative file references
	dir string
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type IssuesConfig struct {
	Unclassified bool `mapstructure:"unclassified"`
	Clamped      bool `mapstructure:"clamped"`
}

type LoaderConfig struct {
	CodePath      string `mapstructure:"code_path"`
	QualifierPath string `mapstructure:"qualifier_path"`
}

// CatalogConfig lists classification entries in priority order. Without
// entries the built-in reference catalog is used.
type CatalogConfig struct {
	Version   string        `mapstructure:"version"`
	CacheSize int           `mapstructure:"cache_size"`
	Entries   []EntryConfig `mapstructure:"entries"`
}

// EntryConfig is one classification entry. Member codes come from Codes or
// from a FHIR ValueSet file, not both.
type EntryConfig struct {
	ValiditySet   string   `mapstructure:"validity_set"`
	TreatmentType string   `mapstructure:"treatment_type"`
	ValidityGroup string   `mapstructure:"validity_group"`
	Days          int      `mapstructure:"days"`
	Codes         []string `mapstructure:"codes"`
	ValueSetFile  string   `mapstructure:"value_set_file"`
	System        string   `mapstructure:"system"`
}

// ScoringConfig holds the day-table scoring parameters. Without tables the
// reference tables are used.
type ScoringConfig struct {
	Threshold int                     `mapstructure:"threshold"`
	Tables    []scoring.WeightedTable `mapstructure:"tables"`
}

// Load reads path (YAML or JSON, optional) and applies PROCVALIDITY_*
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("workers", 0)
	v.SetDefault("issues.unclassified", true)
	v.SetDefault("issues.clamped", false)
	v.SetDefault("loader.code_path", loader.DefaultCodePath)
	v.SetDefault("loader.qualifier_path", "")
	v.SetDefault("catalog.version", catalog.ReferenceVersion)
	v.SetDefault("catalog.cache_size", 0)
	v.SetDefault("scoring.threshold", scoring.ReferenceThreshold)

	cfg := &Config{}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		cfg.dir = filepath.Dir(path)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the catalog entries.
func (c *Config) Validate() error {
	var errs []error
	for i, e := range c.Catalog.Entries {
		switch {
		case e.ValiditySet == "":
			errs = append(errs, fmt.Errorf("catalog entry %d: validity_set is required", i))
		case e.Days <= 0:
			errs = append(errs, fmt.Errorf("catalog entry %d (%s): days must be positive", i, e.ValiditySet))
		case len(e.Codes) == 0 && e.ValueSetFile == "":
			errs = append(errs, fmt.Errorf("catalog entry %d (%s): codes or value_set_file is required", i, e.ValiditySet))
		case len(e.Codes) > 0 && e.ValueSetFile != "":
			errs = append(errs, fmt.Errorf("catalog entry %d (%s): codes and value_set_file are exclusive", i, e.ValiditySet))
		}
	}
	return errors.Join(errs...)
}

// BuildCatalog returns the configured classifier, wrapped in an LRU when
// catalog.cache_size is positive.
func (c *Config) BuildCatalog() (pv.Classifier, error) {
	if len(c.Catalog.Entries) == 0 {
		return c.cached(catalog.Reference()), nil
	}

	entries := make([]pv.ClassificationEntry, 0, len(c.Catalog.Entries))
	for i, e := range c.Catalog.Entries {
		entry, err := c.buildEntry(e)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, e.ValiditySet, err)
		}
		entries = append(entries, entry)
	}

	cat, err := catalog.New(c.Catalog.Version, entries...)
	if err != nil {
		return nil, err
	}
	return c.cached(cat), nil
}

func (c *Config) buildEntry(e EntryConfig) (pv.ClassificationEntry, error) {
	if e.ValueSetFile == "" {
		return pv.NewClassificationEntry(e.Days, e.ValiditySet, e.TreatmentType, e.ValidityGroup, e.Codes...), nil
	}

	vs, err := catalog.LoadValueSetFile(c.resolve(e.ValueSetFile))
	if err != nil {
		return pv.ClassificationEntry{}, err
	}
	return catalog.FromValueSet(catalog.Meta{
		ValiditySet:         e.ValiditySet,
		TreatmentType:       e.TreatmentType,
		ValidityGroup:       e.ValidityGroup,
		DefaultValidityDays: e.Days,
		System:              e.System,
	}, vs)
}

func (c *Config) cached(inner pv.Classifier) pv.Classifier {
	if c.Catalog.CacheSize > 0 {
		return catalog.NewCached(inner, c.Catalog.CacheSize)
	}
	return inner
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// ScoringTables returns the configured tables or the reference tables.
func (c *Config) ScoringTables() []scoring.WeightedTable {
	if len(c.Scoring.Tables) == 0 {
		return scoring.Reference()
	}
	return c.Scoring.Tables
}

// LoaderOptions returns the FHIR loader options.
func (c *Config) LoaderOptions() []loader.Option {
	return []loader.Option{
		loader.WithCodePath(c.Loader.CodePath),
		loader.WithQualifierPath(c.Loader.QualifierPath),
	}
}

// Options returns the reconciler options except the logger.
func (c *Config) Options() []pv.Option {
	return []pv.Option{
		pv.WithWorkerCount(c.Workers),
		pv.WithUnclassifiedIssues(c.Issues.Unclassified),
		pv.WithClampIssues(c.Issues.Clamped),
	}
}
