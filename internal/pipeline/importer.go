package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"vrp-import/internal/columnmap"
	"vrp-import/internal/csvexport"
	"vrp-import/internal/csvparse"
	"vrp-import/internal/location"
	"vrp-import/internal/match"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
	"vrp-import/internal/store"
	"vrp-import/internal/transform"
)

// Options configures an Importer. Start from DefaultOptions; a nil Registry
// or Logger falls back to the defaults.
type Options struct {
	Registry schema.Registry
	Parse    csvparse.Options
	Mapping  columnmap.Options
	Resolve  location.ResolverOptions
	// Geocoder enables enhancement of new locations when non-nil.
	Geocoder             location.Geocoder
	MinGeocodeConfidence float64
	Logger               *zap.Logger
}

// DefaultOptions returns options with every stage at its defaults.
func DefaultOptions() Options {
	return Options{
		Registry: schema.Default(),
		Parse:    csvparse.DefaultOptions(),
		Mapping:  columnmap.DefaultOptions(),
		Resolve:  location.DefaultResolverOptions(),
	}
}

// Importer runs imports and exports against one location store.
type Importer struct {
	registry  schema.Registry
	parseOpts csvparse.Options
	parser    *csvparse.Parser
	mapper    *columnmap.Mapper
	resolver  *location.Resolver
	enhancer  *location.Enhancer
	store     store.LocationStore
	logger    *zap.Logger
}

// New creates an Importer over st.
func New(st store.LocationStore, opts Options) *Importer {
	if opts.Registry == nil {
		opts.Registry = schema.Default()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var enhancer *location.Enhancer
	if opts.Geocoder != nil {
		enhancer = location.NewEnhancer(opts.Geocoder, opts.MinGeocodeConfidence, opts.Logger.Named("geocode"))
	}

	return &Importer{
		registry:  opts.Registry,
		parseOpts: opts.Parse,
		parser:    csvparse.NewParser(opts.Registry),
		mapper:    columnmap.NewMapper(opts.Registry, opts.Mapping),
		resolver:  location.NewResolver(opts.Resolve),
		enhancer:  enhancer,
		store:     st,
		logger:    opts.Logger,
	}
}

// Registry returns the schemas the importer validates against.
func (im *Importer) Registry() schema.Registry {
	return im.registry
}

// ParseOptions returns the parse options used for every file.
func (im *Importer) ParseOptions() csvparse.Options {
	return im.parseOpts
}

// ParseFile checks and parses f without resolving locations.
func (im *Importer) ParseFile(f File, table schema.TableType) *csvparse.Result {
	res := im.parser.ParseFile(f.Name, f.ContentType, f.Data, table, im.parseOpts)

	im.logger.Debug("file parsed",
		zap.String("file", f.Name),
		zap.String("table", string(table)),
		zap.Int("rows", res.Meta.RowCount),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)))

	return res
}

// MapColumns maps headers onto the schema of table.
func (im *Importer) MapColumns(headers []string, table schema.TableType) ([]columnmap.Mapping, error) {
	return im.mapper.MapColumns(headers, table)
}

// Suggest ranks the n schema fields closest to header.
func (im *Importer) Suggest(header string, table schema.TableType, n int) (match.CandidateList, error) {
	return im.mapper.Suggest(header, table, n)
}

// Template writes the CSV template of table.
func (im *Importer) Template(w io.Writer, table schema.TableType, withSample bool) error {
	tbl, err := im.registry.Table(table)
	if err != nil {
		return err
	}

	return csvexport.Template(w, tbl, withSample)
}

// Export enriches rows with the stored location details and writes them as
// CSV. Ids unknown to the store are left as they are.
func (im *Importer) Export(ctx context.Context, w io.Writer, table schema.TableType, rows []record.Row, opts transform.ExportOptions) error {
	tbl, err := im.registry.Table(table)
	if err != nil {
		return err
	}

	ids := transform.IDs(rows)

	byID, err := store.ByIDs(ctx, im.store, ids)
	if err != nil {
		return fmt.Errorf("export %s: %w", table, err)
	}

	enriched := transform.EnrichForExport(rows, byID, opts)

	if err := csvexport.Write(w, csvexport.Headers(enriched, tbl), enriched); err != nil {
		return fmt.Errorf("export %s: %w", table, err)
	}

	im.logger.Info("rows exported",
		zap.String("table", string(table)),
		zap.Int("rows", len(enriched)),
		zap.Int("locations", len(byID)),
		zap.Int("unknownLocations", len(ids)-len(byID)))

	return nil
}

// ExportFile parses an uploaded CSV and exports its rows. A file that fails
// the file checks or parses with file-level errors is not exported; the
// returned result carries the reason.
func (im *Importer) ExportFile(ctx context.Context, w io.Writer, f File, table schema.TableType, opts transform.ExportOptions) (*csvparse.Result, error) {
	res, ok := im.check(f, table)
	if !ok {
		return res, nil
	}

	mappings, err := im.mapper.MapColumns(res.Headers, table)
	if err != nil {
		return res, err
	}

	res.Headers = columnmap.Canonicalize(res.Data, res.Headers, mappings)

	if err := im.Export(ctx, w, table, res.Data, opts); err != nil {
		return res, err
	}

	return res, nil
}
