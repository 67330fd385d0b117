package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	humidityThreshold    = 80.0
	rainfallThreshold    = 15.0
	temperatureThreshold = 33.0
	dryHumidityCeiling   = 50.0

	humidityDelta    = 0.15
	rainfallDelta    = 0.10
	temperatureDelta = 0.08
)

var errBadWeatherValue = errors.New("weather value is not numeric")

// A weatherPath addresses one field of a provider payload. When series is
// set the field is a time series and its last element is the latest value.
type weatherPath struct {
	keys   []string
	series bool
}

func field(keys ...string) weatherPath  { return weatherPath{keys: keys} }
func series(keys ...string) weatherPath { return weatherPath{keys: keys, series: true} }

// Structured current-condition fields come before series tails.
var (
	humidityPaths = []weatherPath{
		field("current_weather", "relativehumidity"),
		field("current_weather", "humidity"),
		field("current", "relativehumidity"),
		field("current", "relative_humidity_2m"),
		field("current", "humidity"),
		field("main", "humidity"),
		series("hourly", "relativehumidity_2m"),
		series("hourly", "relative_humidity_2m"),
	}
	rainfallPaths = []weatherPath{
		field("current_weather", "precipitation"),
		field("current_weather", "rain"),
		field("current", "precipitation"),
		field("current", "rain"),
		field("current", "precip_mm"),
		field("rain", "1h"),
		field("rain", "3h"),
		series("daily", "rain_sum"),
		series("daily", "precipitation_sum"),
	}
	temperaturePaths = []weatherPath{
		field("current_weather", "temperature"),
		field("current_weather", "temp"),
		field("current", "temperature"),
		field("current", "temperature_2m"),
		field("current", "temp"),
		field("current", "temp_c"),
		field("main", "temp"),
		series("hourly", "temperature_2m"),
	}
)

// AssessWeather converts a provider snapshot into an additive risk delta.
// Missing readings skip their rule. A reading that is present but not a
// number voids the whole assessment.
func AssessWeather(snapshot WeatherSnapshot) WeatherAssessment {
	none := WeatherAssessment{Reasons: []string{}}
	if len(snapshot) == 0 {
		return none
	}

	humidity, hasHumidity, err := probe(snapshot, humidityPaths)
	if err != nil {
		return none
	}
	rain, hasRain, err := probe(snapshot, rainfallPaths)
	if err != nil {
		return none
	}
	temp, hasTemp, err := probe(snapshot, temperaturePaths)
	if err != nil {
		return none
	}

	out := WeatherAssessment{Reasons: []string{}}
	if hasHumidity && humidity >= humidityThreshold {
		out.Delta += humidityDelta
		out.Reasons = append(out.Reasons, fmt.Sprintf("High humidity (%s%%) increases fungal risk", formatReading(humidity)))
	}
	if hasRain && rain >= rainfallThreshold {
		out.Delta += rainfallDelta
		out.Reasons = append(out.Reasons, fmt.Sprintf("Recent heavy rain (%s mm) favors disease spread", formatReading(rain)))
	}
	if hasTemp && temp >= temperatureThreshold && (!hasHumidity || humidity < dryHumidityCeiling) {
		out.Delta += temperatureDelta
		out.Reasons = append(out.Reasons, fmt.Sprintf("High temperature (%s°C) with low humidity favors some pests", formatReading(temp)))
	}
	out.Delta = round3(out.Delta)
	return out
}

// probe returns the first non-zero reading along paths. Zero readings are
// treated as absent.
func probe(snapshot WeatherSnapshot, paths []weatherPath) (float64, bool, error) {
	for _, p := range paths {
		raw, ok := lookup(snapshot, p)
		if !ok {
			continue
		}
		v, present, err := toFloat(raw)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", strings.Join(p.keys, "."), err)
		}
		if present && v != 0 {
			return v, true, nil
		}
	}
	return 0, false, nil
}

func lookup(snapshot WeatherSnapshot, p weatherPath) (any, bool) {
	var node any = map[string]any(snapshot)
	for _, k := range p.keys {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[k]; !ok {
			return nil, false
		}
	}
	if !p.series {
		return node, true
	}
	values, ok := node.([]any)
	if !ok || len(values) == 0 {
		return nil, false
	}
	return values[len(values)-1], true
}

func toFloat(v any) (float64, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false, errBadWeatherValue
		}
		return f, true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false, errBadWeatherValue
		}
		return f, true, nil
	default:
		return 0, false, errBadWeatherValue
	}
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
