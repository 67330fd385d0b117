package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
)

var errNoGeocoderKey = errors.New("geocoder api key is not configured")

// GoogleGeocoder resolves Karnataka districts through the Google geocoding
// API. The underlying client keeps its key in a package variable, so calls
// are serialized.
type GoogleGeocoder struct {
	mu      sync.Mutex
	apiKey  string
	state   string
	country string
}

// NewGoogleGeocoder returns a geocoder scoped to one state and country.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, state: "Karnataka", country: "India"}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, district string) (float64, float64, error) {
	if g.apiKey == "" {
		return 0, 0, errNoGeocoderKey
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{
		District: district,
		State:    g.state,
		Country:  g.country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", district, err)
	}
	return loc.Latitude, loc.Longitude, nil
}
