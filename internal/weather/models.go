package weather

import (
	"strings"
	"time"

	"github.com/i474232898/pest-advisory/internal/risk"
)

// Location is a district resolved to coordinates.
type Location struct {
	District string  `json:"district"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(strings.TrimSpace(l.District))
}

// Snapshot is one provider response kept verbatim, since the risk
// heuristic probes provider-specific key paths.
type Snapshot struct {
	Location Location `json:"location"`
	Provider string   `json:"provider"`

	// Timestamp is when the snapshot was fetched; ObservedAt is the
	// provider's own reading time, zero when it reports none.
	Timestamp  time.Time            `json:"timestamp"` // always UTC
	ObservedAt time.Time            `json:"observedAt,omitempty"`
	Data       risk.WeatherSnapshot `json:"data"`
}
