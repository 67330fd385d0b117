package weather

import (
	"context"
	"time"

	"github.com/i474232898/pest-advisory/internal/risk"
)

// Provider abstracts a weather data source (e.g. Open-Meteo, OpenWeatherMap).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Snapshot, error)
}

// Store is the contract the in-memory snapshot cache must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
	GetRange(loc Location, from, to time.Time) ([]Snapshot, error)
}

// Geocoder resolves a district that has no catalog coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, district string) (lat, lon float64, err error)
}

// CoordinateSource looks up known district coordinates. *risk.Catalog
// satisfies it.
type CoordinateSource interface {
	Coordinates(district string) (risk.Coordinates, bool)
}
