// Package weather fetches daily forecasts for hut locations from Open-Meteo.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"

	"hut-occupancy-backend/config"
)

// Day is one day of the daily forecast. Value fields are pointers because
// Open-Meteo omits values it cannot provide.
type Day struct {
	Date            time.Time
	TempMinC        *float64
	TempMaxC        *float64
	PrecipitationMM *float64
	Code            *int
	Condition       Condition
}

// Client talks to the Open-Meteo forecast API. Responses are cached per
// coordinate pair and the upstream is guarded by a circuit breaker, so a
// flapping weather service cannot slow down every availability request.
type Client struct {
	baseURL  string
	timezone string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	cache    *cache.Cache
	ttl      time.Duration
}

// NewClient creates a forecast client from the weather configuration.
func NewClient(cfg config.WeatherConfig) *Client {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &Client{
		baseURL:  cfg.BaseURL,
		timezone: cfg.Timezone,
		client:   &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

type forecastResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		WeatherCode      []*int     `json:"weathercode"`
	} `json:"daily"`
}

// Forecast returns the daily forecast for the given coordinates, from cache
// when a fresh entry exists.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]Day, error) {
	key := fmt.Sprintf("%.6f,%.6f", lat, lon)
	if cached, found := c.cache.Get(key); found {
		return cached.([]Day), nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode")
	q.Set("timezone", c.timezone)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var payload forecastResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal forecast response: %w", err)
		}
		return payload.toDays()
	})
	if err != nil {
		return nil, fmt.Errorf("fetching forecast for %s: %w", key, err)
	}

	days := result.([]Day)
	c.cache.Set(key, days, c.ttl)
	return days, nil
}

// toDays zips Open-Meteo's parallel daily arrays into one record per day.
func (r *forecastResponse) toDays() ([]Day, error) {
	days := make([]Day, 0, len(r.Daily.Time))
	for i, ts := range r.Daily.Time {
		date, err := time.Parse("2006-01-02", ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse forecast date %q: %w", ts, err)
		}

		d := Day{Date: date, Condition: ConditionUnknown}
		if i < len(r.Daily.TemperatureMin) {
			d.TempMinC = r.Daily.TemperatureMin[i]
		}
		if i < len(r.Daily.TemperatureMax) {
			d.TempMaxC = r.Daily.TemperatureMax[i]
		}
		if i < len(r.Daily.PrecipitationSum) {
			d.PrecipitationMM = r.Daily.PrecipitationSum[i]
		}
		if i < len(r.Daily.WeatherCode) && r.Daily.WeatherCode[i] != nil {
			d.Code = r.Daily.WeatherCode[i]
			d.Condition = Describe(*d.Code)
		}
		days = append(days, d)
	}
	return days, nil
}
