package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"vrp-import/internal/diagnostic"
	"vrp-import/internal/location"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
	"vrp-import/internal/store"
	"vrp-import/internal/transform"
)

// ErrInvalidDecision is returned by Commit for a decision that cannot be
// applied.
var ErrInvalidDecision = errors.New("invalid decision")

// Decision settles the resolution of one row.
type Decision struct {
	Resolution         location.Kind `json:"resolution"`
	SelectedLocationID string        `json:"selectedLocationId,omitempty"`
}

// CommitOptions controls Commit.
type CommitOptions struct {
	// Decisions are keyed by Result.Data index.
	Decisions map[int]Decision
	// DryRun transforms rows without creating locations.
	DryRun bool
}

// Duplicate is a locations-table row that matched an existing record.
type Duplicate struct {
	Row        int    `json:"row"`
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
}

// Outcome is the result of a committed import. Rows are the valid rows of
// the file rewritten for persistence, in file order.
type Outcome struct {
	Table       schema.TableType      `json:"table"`
	Rows        []record.Row          `json:"rows"`
	Resolutions []location.Resolution `json:"resolutions"`
	Created     []location.Existing   `json:"created"`
	Duplicates  []Duplicate           `json:"duplicates"`
	diagnostic.Report
	Summary Summary `json:"summary"`
}

// Commit applies decisions to plan, creates the new locations it needs and
// rewrites the valid rows with location ids. Rows sharing a new location
// (same LocationKey) share one created record.
//
// For the locations table the rows themselves are master records:
// create_new rows are created, and use_existing rows are reported as
// duplicates and left out of the output rows.
func (im *Importer) Commit(ctx context.Context, plan *Plan, opts CommitOptions) (*Outcome, error) {
	if plan == nil || plan.Result == nil {
		return nil, errors.New("commit import: nil plan")
	}

	if plan.Result.FileLevel() {
		return nil, fmt.Errorf("commit import: file rejected: %w", plan.Result.Err())
	}

	tbl, err := im.registry.Table(plan.Table)
	if err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	resolutions, err := im.decide(ctx, plan, opts.Decisions)
	if err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	out := &Outcome{
		Table:       plan.Table,
		Resolutions: resolutions,
		Created:     []location.Existing{},
		Duplicates:  []Duplicate{},
		Report: diagnostic.Report{
			Errors:   []diagnostic.Issue{},
			Warnings: []diagnostic.Issue{},
		},
		Summary: plan.Summary,
	}
	out.Summary.count(resolutions)

	created := make(map[string]string)
	pending := make(map[string]struct{})
	duplicate := make(map[int]struct{})

	for _, r := range resolutions {
		row := plan.Result.RowNumber(r.ImportRowIndex)

		switch r.Resolution {
		case location.ManualSelect:
			out.AddWarning(row, "", diagnostic.CodeManualSelect,
				fmt.Sprintf("location %q has %d possible matches; imported without a location id",
					r.SourceName, len(r.Matches)), r.SourceName)

		case location.UseExisting:
			if plan.Table == schema.Locations {
				duplicate[r.ImportRowIndex] = struct{}{}
				out.Duplicates = append(out.Duplicates, Duplicate{Row: row, Name: r.SourceName, LocationID: r.SelectedLocationID})
				out.AddWarning(row, "name", diagnostic.CodeDuplicateRecord,
					fmt.Sprintf("location %q already exists as %s", r.SourceName, r.SelectedLocationID), r.SelectedLocationID)
			}

		case location.CreateNew:
			if r.NewLocationData == nil {
				continue
			}

			key := transform.LocationKey(*r.NewLocationData)
			if _, ok := created[key]; ok {
				continue
			}

			if _, ok := pending[key]; ok {
				continue
			}

			if opts.DryRun {
				pending[key] = struct{}{}
				out.AddWarning(row, "", diagnostic.CodeUnresolvedCreate,
					fmt.Sprintf("new location %q is not created in a dry run", r.NewLocationData.Name), r.NewLocationData.Name)

				continue
			}

			loc, err := im.store.Create(ctx, im.enhancer.Enhance(ctx, *r.NewLocationData))
			if err != nil {
				return nil, fmt.Errorf("commit import: create location %q: %w", r.NewLocationData.Name, err)
			}

			created[key] = loc.ID
			out.Created = append(out.Created, loc)

			im.logger.Debug("location created",
				zap.String("id", loc.ID), zap.String("name", loc.Name), zap.Int("row", row))
		}
	}

	rows := transform.ApplyResolutions(plan.Result.Data, resolutions, created, tbl)

	_, valid := plan.Result.ValidRows()
	out.Rows = make([]record.Row, 0, len(valid))

	for _, i := range valid {
		if _, ok := duplicate[i]; ok {
			continue
		}

		out.Rows = append(out.Rows, rows[i])
	}

	im.logger.Info("import committed",
		zap.String("table", string(plan.Table)),
		zap.Bool("dryRun", opts.DryRun),
		zap.Int("rows", len(out.Rows)),
		zap.Int("created", len(out.Created)),
		zap.Int("duplicates", len(out.Duplicates)),
		zap.Int("manualSelect", out.Summary.ManualSelect))

	return out, nil
}

// decide returns a copy of the plan's resolutions with decisions applied.
func (im *Importer) decide(ctx context.Context, plan *Plan, decisions map[int]Decision) ([]location.Resolution, error) {
	out := slices.Clone(plan.Resolutions)

	pos := make(map[int]int, len(out))
	for i, r := range out {
		pos[r.ImportRowIndex] = i
	}

	for _, idx := range slices.Sorted(maps.Keys(decisions)) {
		d := decisions[idx]
		row := plan.Result.RowNumber(idx)

		i, ok := pos[idx]
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no location to resolve", ErrInvalidDecision, row)
		}

		kind, ok := location.ParseKind(string(d.Resolution))
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unknown resolution %q", ErrInvalidDecision, row, d.Resolution)
		}

		if kind == location.UseExisting {
			if d.SelectedLocationID == "" {
				return nil, fmt.Errorf("%w: row %d: use_existing needs a location id", ErrInvalidDecision, row)
			}

			_, err := im.store.Get(ctx, d.SelectedLocationID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: row %d: location %s does not exist", ErrInvalidDecision, row, d.SelectedLocationID)
			}

			if err != nil {
				return nil, fmt.Errorf("get location %s: %w", d.SelectedLocationID, err)
			}
		}

		out[i] = out[i].Decide(kind, d.SelectedLocationID)
	}

	return out, nil
}
