package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"vrp-import/internal/columnmap"
	"vrp-import/internal/csvparse"
	"vrp-import/internal/location"
	"vrp-import/internal/schema"
	"vrp-import/internal/transform"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the complete importer configuration.
type Config struct {
	Version  string                   `yaml:"version"`
	Server   ServerConfig             `yaml:"server"`
	Store    StoreConfig              `yaml:"store"`
	Log      LogConfig                `yaml:"log"`
	Parse    ParseConfig              `yaml:"parse"`
	Mapping  columnmap.Options        `yaml:"mapping"`
	Resolve  location.ResolverOptions `yaml:"resolve"`
	Geocoder GeocoderConfig           `yaml:"geocoder"`
	Export   transform.ExportOptions  `yaml:"export"`
	// Tables replace the built-in schema of the same type.
	Tables []schema.Table `yaml:"tables,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects the location master backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ParseConfig mirrors csvparse.Options with YAML-friendly types.
type ParseConfig struct {
	Delimiter              string  `yaml:"delimiter"`
	HasHeader              bool    `yaml:"has_header"`
	SkipEmptyLines         bool    `yaml:"skip_empty_lines"`
	MaxFileSizeMB          float64 `yaml:"max_file_size_mb"`
	Encoding               string  `yaml:"encoding"`
	DuplicateHintPrecision int     `yaml:"duplicate_hint_precision"`
}

// GeocoderConfig enables geocoding of new locations.
type GeocoderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url"`
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence float64       `yaml:"min_confidence"`
}

// Default returns the built-in configuration.
func Default() *Config {
	parse := csvparse.DefaultOptions()

	return &Config{
		Version: "1",
		Server:  ServerConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Store:   StoreConfig{Driver: DriverMemory},
		Log:     LogConfig{Level: "info"},
		Parse: ParseConfig{
			Delimiter:              string(parse.Delimiter),
			HasHeader:              parse.HasHeader,
			SkipEmptyLines:         parse.SkipEmptyLines,
			MaxFileSizeMB:          parse.MaxFileSizeMB,
			Encoding:               parse.Encoding,
			DuplicateHintPrecision: parse.DuplicateHintPrecision,
		},
		Mapping: columnmap.DefaultOptions(),
		Resolve: location.DefaultResolverOptions(),
		Geocoder: GeocoderConfig{
			URL:           location.DefaultNominatimURL,
			UserAgent:     "vrp-import/1.0",
			Timeout:       15 * time.Second,
			MinConfidence: 0.3,
		},
		Export: transform.DefaultExportOptions(),
	}
}

// LoadFile loads a YAML configuration file. An empty path returns the
// defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data over the defaults. Keys absent from data keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills values that YAML set to empty.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Version == "" {
		cfg.Version = def.Version
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}

	if cfg.Parse.Delimiter == "" {
		cfg.Parse.Delimiter = def.Parse.Delimiter
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}

	if cfg.Resolve.Workers < 1 {
		cfg.Resolve.Workers = 1
	}

	for i := range cfg.Tables {
		if tt, err := schema.ParseTableType(string(cfg.Tables[i].Type)); err == nil {
			cfg.Tables[i].Type = tt
		}
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if utf8.RuneCountInString(c.Parse.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("parse.delimiter must be a single character, got %q", c.Parse.Delimiter))
	}

	if c.Parse.MaxFileSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("parse.max_file_size_mb must be positive, got %g", c.Parse.MaxFileSizeMB))
	}

	if c.Parse.DuplicateHintPrecision < 0 || c.Parse.DuplicateHintPrecision > 12 {
		errs = append(errs, fmt.Errorf("parse.duplicate_hint_precision must be 0-12, got %d", c.Parse.DuplicateHintPrecision))
	}

	errs = append(errs, unitRange("mapping.fuzzy_threshold", c.Mapping.FuzzyThreshold))
	errs = append(errs, unitRange("resolve.use_existing_threshold", c.Resolve.UseExistingThreshold))
	errs = append(errs, unitRange("resolve.manual_select_threshold", c.Resolve.ManualSelectThreshold))
	errs = append(errs, unitRange("resolve.match.exact_name_confidence", c.Resolve.Match.ExactNameConfidence))
	errs = append(errs, unitRange("resolve.match.coordinate_floor", c.Resolve.Match.CoordinateFloor))
	errs = append(errs, unitRange("resolve.match.address_threshold", c.Resolve.Match.AddressThreshold))
	errs = append(errs, unitRange("resolve.match.fuzzy_name_threshold", c.Resolve.Match.FuzzyNameThreshold))
	errs = append(errs, unitRange("geocoder.min_confidence", c.Geocoder.MinConfidence))

	if c.Resolve.ManualSelectThreshold > c.Resolve.UseExistingThreshold {
		errs = append(errs, errors.New("resolve.manual_select_threshold must not exceed resolve.use_existing_threshold"))
	}

	if c.Resolve.Match.CoordinateThresholdKm <= 0 {
		errs = append(errs, fmt.Errorf("resolve.match.coordinate_threshold_km must be positive, got %g",
			c.Resolve.Match.CoordinateThresholdKm))
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, c.Store.Driver))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	for _, t := range c.Tables {
		if _, err := schema.ParseTableType(string(t.Type)); err != nil {
			errs = append(errs, fmt.Errorf("tables: %w", err))
		}

		if len(t.Fields) == 0 {
			errs = append(errs, fmt.Errorf("tables: %s has no fields", t.Type))
		}
	}

	return errors.Join(errs...)
}

func unitRange(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %g", name, v)
	}

	return nil
}

// ParseOptions converts the parse settings for csvparse.
func (c *Config) ParseOptions() csvparse.Options {
	delim, _ := utf8.DecodeRuneInString(c.Parse.Delimiter)

	return csvparse.Options{
		Delimiter:              delim,
		HasHeader:              c.Parse.HasHeader,
		SkipEmptyLines:         c.Parse.SkipEmptyLines,
		MaxFileSizeMB:          c.Parse.MaxFileSizeMB,
		Encoding:               c.Parse.Encoding,
		AnalyzeLocations:       true,
		DuplicateHintPrecision: c.Parse.DuplicateHintPrecision,
	}
}

// Registry returns the built-in schemas with the configured tables applied.
func (c *Config) Registry() schema.Registry {
	tables := make([]*schema.Table, 0, len(c.Tables))
	for i := range c.Tables {
		tables = append(tables, &c.Tables[i])
	}

	return schema.Default().With(tables...)
}

// Marshal serializes the configuration to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
