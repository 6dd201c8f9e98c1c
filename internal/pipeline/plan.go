package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vrp-import/internal/columnmap"
	"vrp-import/internal/csvparse"
	"vrp-import/internal/location"
	"vrp-import/internal/schema"
)

// File is an uploaded CSV.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Plan is the dry run of an import: the parse outcome, the column mapping
// and a location resolution for every valid row that carries location data.
// Resolution row indices point into Result.Data.
type Plan struct {
	Table       schema.TableType      `json:"table"`
	Result      *csvparse.Result      `json:"parse"`
	Mappings    []columnmap.Mapping   `json:"mappings"`
	Resolutions []location.Resolution `json:"resolutions"`
	Summary     Summary               `json:"summary"`
}

// Summary counts the rows of a plan by outcome.
type Summary struct {
	Rows         int `json:"rows"`
	ValidRows    int `json:"validRows"`
	ErrorRows    int `json:"errorRows"`
	UseExisting  int `json:"useExisting"`
	ManualSelect int `json:"manualSelect"`
	CreateNew    int `json:"createNew"`
	Skip         int `json:"skip"`
}

func (s *Summary) count(resolutions []location.Resolution) {
	s.UseExisting, s.ManualSelect, s.CreateNew, s.Skip = 0, 0, 0, 0

	for _, r := range resolutions {
		switch r.Resolution {
		case location.UseExisting:
			s.UseExisting++
		case location.ManualSelect:
			s.ManualSelect++
		case location.CreateNew:
			s.CreateNew++
		case location.Skip:
			s.Skip++
		}
	}
}

// Ready reports whether the plan can be committed without decisions.
func (p *Plan) Ready() bool {
	return !p.Result.FileLevel() && p.Summary.ManualSelect == 0
}

// ResolutionFor returns the resolution of the row at Data index i.
func (p *Plan) ResolutionFor(i int) (location.Resolution, bool) {
	for _, r := range p.Resolutions {
		if r.ImportRowIndex == i {
			return r, true
		}
	}

	return location.Resolution{}, false
}

func (im *Importer) check(f File, table schema.TableType) (*csvparse.Result, bool) {
	res := im.ParseFile(f, table)

	if res.FileLevel() {
		im.logger.Info("file rejected",
			zap.String("file", f.Name),
			zap.String("table", string(table)),
			zap.Error(res.Err()))

		return res, false
	}

	return res, true
}

// Plan validates and parses f, maps its headers and resolves the locations
// of its valid rows against the store. Data problems are reported in the
// plan; the error is reserved for an unknown table, a failing store or a
// cancelled context.
func (im *Importer) Plan(ctx context.Context, f File, table schema.TableType) (*Plan, error) {
	if _, err := im.registry.Table(table); err != nil {
		return nil, fmt.Errorf("plan import: %w", err)
	}

	log := im.logger.With(zap.String("file", f.Name), zap.String("table", string(table)))

	res, ok := im.check(f, table)

	plan := &Plan{
		Table:       table,
		Result:      res,
		Mappings:    []columnmap.Mapping{},
		Resolutions: []location.Resolution{},
		Summary:     Summary{Rows: len(res.Data)},
	}

	if !ok {
		return plan, nil
	}

	mappings, err := im.mapper.MapColumns(res.Headers, table)
	if err != nil {
		return nil, fmt.Errorf("plan import: %w", err)
	}

	plan.Mappings = mappings
	res.Headers = columnmap.Canonicalize(res.Data, res.Headers, mappings)

	valid, indices := res.ValidRows()
	plan.Summary.ValidRows = len(valid)
	plan.Summary.ErrorRows = len(res.Data) - len(valid)

	existing, err := im.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan import: list locations: %w", err)
	}

	resolutions, err := im.resolver.ResolveBatch(ctx, valid, existing)
	if err != nil {
		return nil, fmt.Errorf("plan import: %w", err)
	}

	for i := range resolutions {
		resolutions[i].ImportRowIndex = indices[resolutions[i].ImportRowIndex]
	}

	plan.Resolutions = resolutions
	plan.Summary.count(resolutions)

	log.Info("import planned",
		zap.Int("rows", plan.Summary.Rows),
		zap.Int("validRows", plan.Summary.ValidRows),
		zap.Int("errorRows", plan.Summary.ErrorRows),
		zap.Int("existingLocations", len(existing)),
		zap.Int("useExisting", plan.Summary.UseExisting),
		zap.Int("manualSelect", plan.Summary.ManualSelect),
		zap.Int("createNew", plan.Summary.CreateNew))

	return plan, nil
}
