package location

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"vrp-import/internal/geo"
)

// GeocodeResult is a geocoder's answer for an address.
type GeocodeResult struct {
	Coordinates geo.Point
	Address     string
	Confidence  float64
}

// Geocoder converts between addresses and coordinates. Implementations call
// external services and may fail at any time.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Enhancer completes new locations with a Geocoder. A nil Geocoder makes it
// a no-op.
type Enhancer struct {
	geocoder Geocoder
	logger   *zap.Logger
	// minConfidence drops geocode answers scoring below it.
	minConfidence float64
}

// NewEnhancer creates an enhancer. A nil logger discards logs.
func NewEnhancer(geocoder Geocoder, minConfidence float64, logger *zap.Logger) *Enhancer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Enhancer{geocoder: geocoder, logger: logger, minConfidence: minConfidence}
}

// Enhance fills coordinates from the address, or the address from the
// coordinates, whichever is missing. Failures are logged and loc is returned
// as it was.
func (e *Enhancer) Enhance(ctx context.Context, loc NewLocation) NewLocation {
	if e == nil || e.geocoder == nil {
		return loc
	}

	_, hasPoint := loc.Point()
	address := strings.TrimSpace(loc.Address)

	switch {
	case !hasPoint && address != "":
		res, err := e.geocoder.Geocode(ctx, address)
		if err != nil {
			e.logger.Warn("geocoding failed; keeping location without coordinates",
				zap.String("name", loc.Name), zap.String("address", address), zap.Error(err))

			return loc
		}

		if res.Confidence < e.minConfidence || !res.Coordinates.Valid() {
			e.logger.Debug("geocoding result rejected",
				zap.String("address", address), zap.Float64("confidence", res.Confidence))

			return loc
		}

		loc.Lat = ptr(res.Coordinates.Lat)
		loc.Lon = ptr(res.Coordinates.Lon)
	case hasPoint && address == "":
		addr, err := e.geocoder.ReverseGeocode(ctx, *loc.Lat, *loc.Lon)
		if err != nil {
			e.logger.Warn("reverse geocoding failed; keeping location without address",
				zap.String("name", loc.Name), zap.Float64("lat", *loc.Lat), zap.Float64("lon", *loc.Lon), zap.Error(err))

			return loc
		}

		loc.Address = strings.TrimSpace(addr)
	}

	return loc
}
