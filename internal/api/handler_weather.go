package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hut-occupancy-backend/internal/history"
)

// WeatherDayResponse is one forecast day at a hut's coordinates.
type WeatherDayResponse struct {
	Date string `json:"date"`
	DayWeather
}

// WeatherResponse is the daily forecast for one hut.
type WeatherResponse struct {
	Hut   string               `json:"hut"`
	HutID int64                `json:"hutId"`
	Days  []WeatherDayResponse `json:"days"`
}

// GetWeather handles the GET /api/huts/{hut_id}/weather request.
func (h *Handler) GetWeather(c *gin.Context) {
	d, ok := h.hutFromParam(c)
	if !ok {
		return
	}
	if h.weather == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Weather lookups are disabled"})
		return
	}

	days, err := h.weather.Forecast(c.Request.Context(), d.Latitude, d.Longitude)
	if err != nil {
		log.Printf("Error fetching forecast for %s: %v", d.Name, err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch weather data"})
		return
	}

	resp := WeatherResponse{
		Hut:   d.Name,
		HutID: d.UpstreamID,
		Days:  make([]WeatherDayResponse, 0, len(days)),
	}
	for _, day := range days {
		resp.Days = append(resp.Days, WeatherDayResponse{
			Date:       history.FormatDate(day.Date),
			DayWeather: *toDayWeather(day),
		})
	}
	c.JSON(http.StatusOK, resp)
}
