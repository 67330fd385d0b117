package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/pest-advisory/internal/weather"
)

var errNoWeatherAPIKey = errors.New("weatherapi api key is not configured")

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// Its "current" block carries humidity, precip_mm and temp_c.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, errNoWeatherAPIKey
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI accepts "lat,lon" for q.
		values.Set("q", fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	data, err := decodeSnapshot(resp.Body)
	if err != nil {
		return weather.Snapshot{}, err
	}

	var observed time.Time
	if current, ok := data["current"].(map[string]any); ok {
		if epoch, ok := current["last_updated_epoch"].(float64); ok && epoch > 0 {
			observed = time.Unix(int64(epoch), 0).UTC()
		}
	}

	return weather.Snapshot{
		Provider:   p.name,
		ObservedAt: observed,
		Data:       data,
	}, nil
}
