package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vrp-import/internal/config"
	"vrp-import/internal/location"
	"vrp-import/internal/pipeline"
	"vrp-import/internal/schema"
	"vrp-import/internal/store"
)

// openStore opens the configured location store.
func openStore(ctx context.Context, c *config.Config) (store.LocationStore, error) {
	switch c.Store.Driver {
	case config.DriverSQLite:
		return store.OpenSQL(ctx, c.Store.DSN)
	default:
		return store.NewMemoryStore(), nil
	}
}

func importerOptions(c *config.Config) pipeline.Options {
	opts := pipeline.Options{
		Registry:             c.Registry(),
		Parse:                c.ParseOptions(),
		Mapping:              c.Mapping,
		Resolve:              c.Resolve,
		MinGeocodeConfidence: c.Geocoder.MinConfidence,
		Logger:               logger,
	}

	if c.Geocoder.Enabled {
		opts.Geocoder = location.NewNominatimGeocoder(c.Geocoder.URL, c.Geocoder.UserAgent, c.Geocoder.Timeout)
	}

	return opts
}

// withImporter opens the store, builds an importer and runs fn.
func withImporter(cmd *cobra.Command, fn func(ctx context.Context, im *pipeline.Importer) error) error {
	ctx := cmd.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, pipeline.New(st, importerOptions(cfg)))
}

// readFile reads a CSV argument; "-" reads standard input.
func readFile(path string) (pipeline.File, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return pipeline.File{}, fmt.Errorf("failed to read stdin: %w", err)
		}

		return pipeline.File{Data: data}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return pipeline.File{Name: filepath.Base(path), Data: data}, nil
}

func tableFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "table", "t", "", "destination table (vehicles, jobs, locations, routes, shipments)")
	_ = cmd.MarkFlagRequired("table")
}

func parseTable(name string) (schema.TableType, error) {
	t, err := schema.ParseTableType(name)
	if err != nil {
		return "", err
	}

	if _, err := cfg.Registry().Table(t); err != nil {
		return "", err
	}

	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// output opens path for writing, or returns the command's stdout for "" and "-".
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
