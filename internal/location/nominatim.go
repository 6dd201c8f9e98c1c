package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vrp-import/internal/geo"
)

// ErrNoGeocodeResult is returned when the service knows no place for a query.
var ErrNoGeocodeResult = errors.New("no geocoding result")

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder is a Geocoder backed by a Nominatim-compatible HTTP API.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder creates a geocoder for baseURL. Nominatim requires an
// identifying User-Agent.
func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Geocode looks address up with the search endpoint and returns the best
// place. Nominatim's importance is used as the confidence.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := g.get(ctx, "/search", params, &places); err != nil {
		return GeocodeResult{}, err
	}

	if len(places) == 0 {
		return GeocodeResult{}, fmt.Errorf("geocode %q: %w", address, ErrNoGeocodeResult)
	}

	p, err := places[0].point()
	if err != nil {
		return GeocodeResult{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	return GeocodeResult{Coordinates: p, Address: places[0].DisplayName, Confidence: places[0].Importance}, nil
}

// ReverseGeocode returns the display address of the place at lat, lon.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("format", "json")

	var place nominatimPlace
	if err := g.get(ctx, "/reverse", params, &place); err != nil {
		return "", err
	}

	if place.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode %.6f,%.6f: %w", lat, lon, ErrNoGeocodeResult)
	}

	return place.DisplayName, nil
}

func (g *NominatimGeocoder) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func (p nominatimPlace) point() (geo.Point, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}

	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	return geo.NewPoint(lat, lon), nil
}
