package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/pest-advisory/internal/risk"
)

var (
	// ErrUnknownDistrict is returned when a district has no coordinates and
	// cannot be geocoded.
	ErrUnknownDistrict = errors.New("district location unknown")

	errNoProviders = errors.New("no weather providers configured")
)

// Service resolves districts, fetches provider snapshots and caches them.
type Service struct {
	store     Store
	providers []Provider
	coords    CoordinateSource
	geocoder  Geocoder
	freshness time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.Mutex
	geocoded map[string]Location
}

// Option configures a Service.
type Option func(*Service)

// WithCoordinates sets the table of known district coordinates.
func WithCoordinates(src CoordinateSource) Option {
	return func(s *Service) { s.coords = src }
}

// WithGeocoder sets the fallback for districts missing from the table.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// WithFreshness sets how long a cached snapshot is served without refetching.
func WithFreshness(d time.Duration) Option {
	return func(s *Service) { s.freshness = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		freshness: time.Hour,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    zap.NewNop(),
		geocoded:  make(map[string]Location),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locate resolves a district from the coordinate table, then the geocoder.
// Geocoded results are remembered for the life of the service.
func (s *Service) Locate(ctx context.Context, district string) (Location, error) {
	loc := Location{District: district}
	if s.coords != nil {
		if c, ok := s.coords.Coordinates(district); ok {
			loc.Lat, loc.Lon = c.Lat, c.Lon
			return loc, nil
		}
	}

	s.mu.Lock()
	cached, ok := s.geocoded[loc.Key()]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	if s.geocoder == nil {
		return Location{}, fmt.Errorf("%w: %s", ErrUnknownDistrict, district)
	}
	lat, lon, err := s.geocoder.Geocode(ctx, district)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUnknownDistrict, err)
	}
	loc.Lat, loc.Lon = lat, lon

	s.mu.Lock()
	s.geocoded[loc.Key()] = loc
	s.mu.Unlock()
	return loc, nil
}

// FetchAndStore asks each provider in turn and stores the first snapshot
// that arrives. The last good snapshot is left in place when all fail.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) (Snapshot, error) {
	if len(s.providers) == 0 {
		return Snapshot{}, errNoProviders
	}

	var errs []error
	for _, p := range s.providers {
		snap, err := p.Fetch(ctx, loc)
		if err != nil {
			s.logger.Warn("weather provider failed",
				zap.String("provider", p.Name()),
				zap.String("district", loc.District),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		snap.Timestamp = s.now()
		snap.Location = loc
		s.store.SaveSnapshot(loc, snap)
		return snap, nil
	}
	return Snapshot{}, errors.Join(errs...)
}

// SnapshotForDistrict returns the weather to score a district with. Weather
// is optional, so every failure is logged and yields a nil snapshot. A stale
// cached snapshot beats nothing when providers are down.
func (s *Service) SnapshotForDistrict(ctx context.Context, district string) risk.WeatherSnapshot {
	loc, err := s.Locate(ctx, district)
	if err != nil {
		s.logger.Info("no weather location", zap.String("district", district), zap.Error(err))
		return nil
	}

	latest, cacheErr := s.store.GetLatest(loc)
	if cacheErr == nil && s.now().Sub(latest.Timestamp) <= s.freshness {
		return latest.Data
	}

	snap, err := s.FetchAndStore(ctx, loc)
	if err != nil {
		if cacheErr == nil {
			s.logger.Info("serving stale weather", zap.String("district", district), zap.Time("fetched", latest.Timestamp))
			return latest.Data
		}
		s.logger.Warn("weather unavailable", zap.String("district", district), zap.Error(err))
		return nil
	}
	return snap.Data
}

// Warm refreshes the cache for every district concurrently.
func (s *Service) Warm(ctx context.Context, districts []string) {
	var wg sync.WaitGroup
	for _, d := range districts {
		wg.Add(1)
		go func(district string) {
			defer wg.Done()
			s.SnapshotForDistrict(ctx, district)
		}(d)
	}
	wg.Wait()
}

// GetLatest returns the cached snapshot of a district.
func (s *Service) GetLatest(district string) (Snapshot, error) {
	return s.store.GetLatest(Location{District: district})
}

// GetRange returns the cached snapshots of a district between from and to.
func (s *Service) GetRange(district string, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(Location{District: district}, from, to)
}
