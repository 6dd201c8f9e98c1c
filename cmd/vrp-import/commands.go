package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vrp-import/internal/api"
	"vrp-import/internal/config"
	"vrp-import/internal/csvexport"
	"vrp-import/internal/pipeline"
)

var errRejected = errors.New("file rejected")

var (
	tableName     string
	decisionsPath string
	outPath       string
	dryRun        bool
	withSample    bool
	suggestN      int
	legacyFlat    bool
	noNames       bool
	noAddresses   bool
	noCoordinates bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.csv>",
	Short: "Validate and parse a CSV file",
	Long: `Checks the file, parses it against the table schema and prints the
parse result (rows, headers, errors, warnings, meta) as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		file, err := readFile(args[0])
		if err != nil {
			return err
		}

		return withImporter(cmd, func(_ context.Context, im *pipeline.Importer) error {
			res := im.ParseFile(file, table)
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			if res.FileLevel() {
				return errRejected
			}

			return nil
		})
	},
}

type suggestion struct {
	Field string  `json:"field"`
	Score float64 `json:"score"`
}

var mapCmd = &cobra.Command{
	Use:   "map <header>...",
	Short: "Map CSV headers onto the table schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		return withImporter(cmd, func(_ context.Context, im *pipeline.Importer) error {
			mappings, err := im.MapColumns(args, table)
			if err != nil {
				return err
			}

			if suggestN <= 0 {
				return writeJSON(cmd.OutOrStdout(), mappings)
			}

			suggestions := make(map[string][]suggestion, len(args))

			for _, h := range args {
				ranked, err := im.Suggest(h, table, suggestN)
				if err != nil {
					return err
				}

				for _, c := range ranked {
					suggestions[h] = append(suggestions[h], suggestion{Field: c.Name, Score: c.Score})
				}
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{"mappings": mappings, "suggestions": suggestions})
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file.csv>",
	Short: "Plan an import: parse, map and resolve locations without writing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		file, err := readFile(args[0])
		if err != nil {
			return err
		}

		return withImporter(cmd, func(ctx context.Context, im *pipeline.Importer) error {
			plan, err := im.Plan(ctx, file, table)
			if err != nil {
				return err
			}

			if err := writeJSON(cmd.OutOrStdout(), plan); err != nil {
				return err
			}

			if plan.Result.FileLevel() {
				return errRejected
			}

			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a CSV file, creating new locations in the store",
	Long: `Plans the import, applies the decisions file (a JSON object mapping
0-based data row indices to {"resolution", "selectedLocationId"}), creates
the new locations and prints the outcome as JSON. With --out the rewritten
rows are also written as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		file, err := readFile(args[0])
		if err != nil {
			return err
		}

		opts := pipeline.CommitOptions{DryRun: dryRun}

		if decisionsPath != "" {
			data, err := os.ReadFile(decisionsPath)
			if err != nil {
				return fmt.Errorf("failed to read decisions: %w", err)
			}

			if err := json.Unmarshal(data, &opts.Decisions); err != nil {
				return fmt.Errorf("failed to parse decisions %s: %w", decisionsPath, err)
			}
		}

		return withImporter(cmd, func(ctx context.Context, im *pipeline.Importer) error {
			plan, err := im.Plan(ctx, file, table)
			if err != nil {
				return err
			}

			if plan.Result.FileLevel() {
				_ = writeJSON(cmd.OutOrStdout(), plan.Result)
				return errRejected
			}

			out, err := im.Commit(ctx, plan, opts)
			if err != nil {
				return err
			}

			if outPath != "" {
				tbl, err := im.Registry().Table(table)
				if err != nil {
					return err
				}

				w, err := output(cmd, outPath)
				if err != nil {
					return err
				}
				defer w.Close()

				if err := csvexport.Write(w, csvexport.Headers(out.Rows, tbl), out.Rows); err != nil {
					return err
				}
			}

			return writeJSON(cmd.OutOrStdout(), out)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export rows with their location details filled from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		file, err := readFile(args[0])
		if err != nil {
			return err
		}

		opts := cfg.Export
		opts.LegacyFlat = opts.LegacyFlat || legacyFlat
		opts.Names = opts.Names && !noNames
		opts.Addresses = opts.Addresses && !noAddresses
		opts.Coordinates = opts.Coordinates && !noCoordinates

		w, err := output(cmd, outPath)
		if err != nil {
			return err
		}
		defer w.Close()

		return withImporter(cmd, func(ctx context.Context, im *pipeline.Importer) error {
			res, err := im.ExportFile(ctx, w, file, table, opts)
			if err != nil {
				return err
			}

			if res.FileLevel() {
				_ = writeJSON(cmd.ErrOrStderr(), res.Report)
				return errRejected
			}

			return nil
		})
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the CSV template of a table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseTable(tableName)
		if err != nil {
			return err
		}

		w, err := output(cmd, outPath)
		if err != nil {
			return err
		}
		defer w.Close()

		return withImporter(cmd, func(_ context.Context, im *pipeline.Importer) error {
			return im.Template(w, table, withSample)
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the import API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImporter(cmd, func(ctx context.Context, im *pipeline.Importer) error {
			router := api.NewRouter(im, api.Options{Export: cfg.Export, Logger: logger.Named("api")})

			return api.ListenAndServe(ctx, cfg.Server.Addr, router, cfg.Server.ShutdownTimeout, logger)
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)

		return err
	},
}

func init() {
	for _, cmd := range []*cobra.Command{parseCmd, mapCmd, resolveCmd, importCmd, exportCmd, templateCmd} {
		tableFlag(cmd, &tableName)
	}

	mapCmd.Flags().IntVar(&suggestN, "suggest", 0, "also list the top N candidate fields per header")

	importCmd.Flags().StringVar(&decisionsPath, "decisions", "", "JSON file with per-row resolution decisions")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "transform rows without creating locations")
	importCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the imported rows as CSV to this file")

	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&legacyFlat, "legacy-flat", false, "drop location id columns once enriched")
	exportCmd.Flags().BoolVar(&noNames, "no-names", false, "do not add location names")
	exportCmd.Flags().BoolVar(&noAddresses, "no-addresses", false, "do not add location addresses")
	exportCmd.Flags().BoolVar(&noCoordinates, "no-coordinates", false, "do not add location coordinates")

	templateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	templateCmd.Flags().BoolVar(&withSample, "sample", false, "include a sample row")
}
