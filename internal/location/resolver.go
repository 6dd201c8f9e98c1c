package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vrp-import/internal/geo"
	"vrp-import/internal/record"
)

// ResolverOptions configures the resolution policy.
type ResolverOptions struct {
	// UseExistingThreshold: a best match scoring above it is reused.
	UseExistingThreshold float64 `yaml:"use_existing_threshold"`
	// ManualSelectThreshold: a best match scoring above it (but not above
	// UseExistingThreshold) needs a manual choice.
	ManualSelectThreshold float64 `yaml:"manual_select_threshold"`
	// Workers bounds concurrent row resolution in ResolveBatch; values
	// below 2 resolve rows sequentially.
	Workers int `yaml:"workers"`
	// Match holds the matcher thresholds.
	Match MatchOptions `yaml:"match"`
	// Now stamps placeholder names; nil means time.Now.
	Now func() time.Time `yaml:"-"`
}

// Default resolution thresholds.
const (
	DefaultUseExistingThreshold  = 0.9
	DefaultManualSelectThreshold = 0.7
)

// DefaultResolverOptions returns the documented defaults.
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		UseExistingThreshold:  DefaultUseExistingThreshold,
		ManualSelectThreshold: DefaultManualSelectThreshold,
		Workers:               1,
		Match:                 DefaultMatchOptions(),
	}
}

// Resolver decides, per import row, what to do with its location.
type Resolver struct {
	opts    ResolverOptions
	matcher *Matcher
}

// NewResolver creates a resolver with opts.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Resolver{opts: opts, matcher: NewMatcher(opts.Match)}
}

// Matcher returns the matcher the resolver ranks with.
func (r *Resolver) Matcher() *Matcher {
	return r.matcher
}

// Resolve applies the policy to matches, which must be sorted as FindMatches
// returns them.
func (r *Resolver) Resolve(rowIndex int, c Candidate, matches []Match) Resolution {
	if matches == nil {
		matches = []Match{}
	}

	res := Resolution{
		ImportRowIndex:    rowIndex,
		SourceName:        strings.TrimSpace(c.Name),
		SourceAddress:     strings.TrimSpace(c.Address),
		SourceCoordinates: c.Coordinates,
		Matches:           matches,
	}

	best := MatchList(matches).Best()

	switch {
	case best != nil && best.Confidence > r.opts.UseExistingThreshold:
		res.Resolution = UseExisting
		res.SelectedLocationID = best.ID
	case best != nil && best.Confidence > r.opts.ManualSelectThreshold:
		res.Resolution = ManualSelect
	default:
		nl := newLocationFrom(c, r.opts.Now)
		res.Resolution = CreateNew
		res.NewLocationData = &nl
	}

	return res
}

// ResolveBatch resolves every row that carries location data against
// existing. Rows without any location field produce no resolution. The
// result is in row order regardless of Workers.
func (r *Resolver) ResolveBatch(ctx context.Context, rows []record.Row, existing []Existing) ([]Resolution, error) {
	slots := make([]*Resolution, len(rows))

	resolveRow := func(i int) {
		c, ok := CandidateFromRow(rows[i])
		if !ok {
			return
		}

		res := r.Resolve(i, c, r.matcher.FindMatches(c, existing))
		slots[i] = &res
	}

	if r.opts.Workers < 2 {
		for i := range rows {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("resolve rows: %w", err)
			}

			resolveRow(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Workers)

		for i := range rows {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				resolveRow(i)

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("resolve rows: %w", err)
		}
	}

	out := make([]Resolution, 0, len(rows))

	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}

	return out, nil
}

var (
	nameKeys    = []string{"name", "locationName", "description"}
	addressKeys = []string{"address", "locationAddress"}
	pointKeys   = [][2]string{{"locationLat", "locationLon"}, {"startLat", "startLon"}}
)

// CandidateFromRow extracts the location-shaped fields of a row. It reports
// false when the row has no name, address or coordinates at all.
func CandidateFromRow(row record.Row) (Candidate, bool) {
	var c Candidate

	c.Name = firstText(row, nameKeys)
	c.Address = firstText(row, addressKeys)

	for _, keys := range pointKeys {
		lat, okLat := row.Number(keys[0])
		lon, okLon := row.Number(keys[1])

		if !okLat || !okLon {
			continue
		}

		p := geo.NewPoint(lat, lon)
		if p.Valid() {
			c.Coordinates = &p
			break
		}
	}

	return c, !c.IsEmpty()
}

func firstText(row record.Row, keys []string) string {
	for _, k := range keys {
		if s, ok := row.Text(k); ok {
			return s
		}
	}

	return ""
}

// newLocationFrom builds the data of a location to create from c. The name
// falls back to the first address segment, then to the coordinates, then to
// a timestamp.
func newLocationFrom(c Candidate, now func() time.Time) NewLocation {
	nl := NewLocation{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
	}

	if c.Coordinates != nil {
		nl.Lat = ptr(c.Coordinates.Lat)
		nl.Lon = ptr(c.Coordinates.Lon)
	}

	if nl.Name == "" {
		nl.Name = placeholderName(nl, c, now)
	}

	return nl
}

func placeholderName(nl NewLocation, c Candidate, now func() time.Time) string {
	if nl.Address != "" {
		if first := strings.TrimSpace(strings.SplitN(nl.Address, ",", 2)[0]); first != "" {
			return first
		}
	}

	if c.Coordinates != nil {
		return fmt.Sprintf("Location %.4f, %.4f", c.Coordinates.Lat, c.Coordinates.Lon)
	}

	if now == nil {
		now = time.Now
	}

	return fmt.Sprintf("Location %d", now().UnixMilli())
}
