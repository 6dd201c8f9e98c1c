package store

import (
	"context"
	"errors"
	"fmt"

	"vrp-import/internal/location"
)

// ErrNotFound is returned when a location id is unknown.
var ErrNotFound = errors.New("location not found")

// LocationStore is the location master.
type LocationStore interface {
	// List returns every location in creation order.
	List(ctx context.Context) ([]location.Existing, error)
	// Get returns the location with id, or ErrNotFound.
	Get(ctx context.Context, id string) (location.Existing, error)
	// Create stores a new location and returns it with its assigned id.
	Create(ctx context.Context, nl location.NewLocation) (location.Existing, error)
	Close() error
}

// ByIDs fetches the locations with the given ids. Unknown ids are left out.
func ByIDs(ctx context.Context, s LocationStore, ids []string) (map[string]location.Existing, error) {
	out := make(map[string]location.Existing, len(ids))

	for _, id := range ids {
		loc, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("get location %s: %w", id, err)
		}

		out[id] = loc
	}

	return out, nil
}

func fromNew(id string, nl location.NewLocation) location.Existing {
	return location.Existing{
		ID:      id,
		Name:    nl.Name,
		Address: nl.Address,
		Lat:     nl.Lat,
		Lon:     nl.Lon,
	}
}
