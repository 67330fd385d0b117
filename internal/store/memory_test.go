package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/pest-advisory/internal/weather"
)

func TestMemoryStoreRetention(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(3, 2*time.Hour)
	s.now = func() time.Time { return now }
	loc := weather.Location{District: "Dharwad"}

	for _, hoursAgo := range []int{5, 4, 1, 0} {
		s.SaveSnapshot(loc, weather.Snapshot{Provider: "p", Timestamp: now.Add(-time.Duration(hoursAgo) * time.Hour)})
	}

	all, err := s.GetRange(weather.Location{District: " dharwad "}, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snapshots after retention, got %d", len(all))
	}

	latest, err := s.GetLatest(loc)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !latest.Timestamp.Equal(now) {
		t.Errorf("latest: got %v", latest.Timestamp)
	}
}

func TestMemoryStoreKeepsNewestEvenIfOld(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }
	loc := weather.Location{District: "udupi"}

	s.SaveSnapshot(loc, weather.Snapshot{Timestamp: now.Add(-3 * time.Hour)})
	if _, err := s.GetLatest(loc); err != nil {
		t.Fatalf("expected the only snapshot to be kept: %v", err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore(10, 0)
	loc := weather.Location{District: "mysuru"}

	if _, err := s.GetLatest(loc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("latest: expected ErrNotFound, got %v", err)
	}

	s.SaveSnapshot(loc, weather.Snapshot{Timestamp: time.Unix(100, 0)})
	if _, err := s.GetRange(loc, time.Unix(200, 0), time.Unix(300, 0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("range: expected ErrNotFound, got %v", err)
	}
}
