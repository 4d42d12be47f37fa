package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hut-occupancy-backend/config"
)

const forecastPayload = `{
	"daily": {
		"time": ["2025-07-15", "2025-07-16", "2025-07-17"],
		"temperature_2m_max": [18.4, null, 21.0],
		"temperature_2m_min": [6.1, 4.0, 8.2],
		"precipitation_sum": [0.0, 12.5, null],
		"weathercode": [1, 95, null]
	}
}`

func testClient(serverURL string) *Client {
	return NewClient(config.WeatherConfig{
		BaseURL:         serverURL,
		Timezone:        "Europe/Vienna",
		TimeoutSeconds:  5,
		CacheTTLSeconds: 60,
	})
}

func TestForecast(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "47.085", q.Get("latitude"))
		assert.Equal(t, "11.195", q.Get("longitude"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode", q.Get("daily"))
		assert.Equal(t, "Europe/Vienna", q.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	c := testClient(server.URL)

	days, err := c.Forecast(context.Background(), 47.085, 11.195)
	require.NoError(t, err)
	require.Len(t, days, 3)

	first := days[0]
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), first.Date)
	require.NotNil(t, first.TempMaxC)
	assert.InDelta(t, 18.4, *first.TempMaxC, 0.001)
	require.NotNil(t, first.TempMinC)
	assert.InDelta(t, 6.1, *first.TempMinC, 0.001)
	assert.Equal(t, ConditionPartlyCloudy, first.Condition)

	// Missing values stay nil instead of becoming zeros.
	assert.Nil(t, days[1].TempMaxC)
	assert.Equal(t, ConditionThunderstorm, days[1].Condition)
	assert.Nil(t, days[2].PrecipitationMM)
	assert.Nil(t, days[2].Code)
	assert.Equal(t, ConditionUnknown, days[2].Condition)

	assert.Equal(t, int32(1), requests.Load())
}

func TestForecastUsesCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(forecastPayload))
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.Forecast(context.Background(), 47.085, 11.195)
	require.NoError(t, err)
	_, err = c.Forecast(context.Background(), 47.085, 11.195)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load(), "second call must be served from cache")

	// A different coordinate pair misses the cache.
	_, err = c.Forecast(context.Background(), 47.054769, 11.198342)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestForecastUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.Forecast(context.Background(), 47.085, 11.195)
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		code int
		want Condition
	}{
		{0, ConditionClear},
		{2, ConditionPartlyCloudy},
		{45, ConditionFog},
		{48, ConditionFog},
		{53, ConditionDrizzle},
		{63, ConditionRain},
		{75, ConditionSnow},
		{95, ConditionThunderstorm},
		{42, ConditionUnknown},
		{-1, ConditionUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.code))
	}
}
