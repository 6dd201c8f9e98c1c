package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VRP_IMPORT_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	name  string
	apply func(cfg *Config, value string) error
}

func setString(dst func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		*dst(cfg) = v
		return nil
	}
}

func setFloat(dst func(*Config) *float64) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}

		*dst(cfg) = f

		return nil
	}
}

func setInt(dst func(*Config) *int) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		*dst(cfg) = n

		return nil
	}
}

func setBool(dst func(*Config) *bool) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}

		*dst(cfg) = b

		return nil
	}
}

func setDuration(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(cfg *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}

		*dst(cfg) = d

		return nil
	}
}

var envVars = []envVar{
	{"ADDR", setString(func(c *Config) *string { return &c.Server.Addr })},
	{"STORE_DRIVER", setString(func(c *Config) *string { return &c.Store.Driver })},
	{"STORE_DSN", setString(func(c *Config) *string { return &c.Store.DSN })},
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_DEVELOPMENT", setBool(func(c *Config) *bool { return &c.Log.Development })},
	{"DELIMITER", setString(func(c *Config) *string { return &c.Parse.Delimiter })},
	{"ENCODING", setString(func(c *Config) *string { return &c.Parse.Encoding })},
	{"MAX_FILE_SIZE_MB", setFloat(func(c *Config) *float64 { return &c.Parse.MaxFileSizeMB })},
	{"WORKERS", setInt(func(c *Config) *int { return &c.Resolve.Workers })},
	{"COORDINATE_THRESHOLD_KM", setFloat(func(c *Config) *float64 { return &c.Resolve.Match.CoordinateThresholdKm })},
	{"ADDRESS_THRESHOLD", setFloat(func(c *Config) *float64 { return &c.Resolve.Match.AddressThreshold })},
	{"GEOCODER_ENABLED", setBool(func(c *Config) *bool { return &c.Geocoder.Enabled })},
	{"GEOCODER_URL", setString(func(c *Config) *string { return &c.Geocoder.URL })},
	{"GEOCODER_USER_AGENT", setString(func(c *Config) *string { return &c.Geocoder.UserAgent })},
	{"GEOCODER_TIMEOUT", setDuration(func(c *Config) *time.Duration { return &c.Geocoder.Timeout })},
}

// ApplyEnv overrides settings from VRP_IMPORT_* variables found by lookup.
// A nil lookup reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var errs []error

	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok {
			continue
		}

		if err := ev.apply(c, v); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, ev.name, err))
		}
	}

	return errors.Join(errs...)
}

// Load reads path (optional), applies the environment and validates.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
