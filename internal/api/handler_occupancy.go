package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
	"hut-occupancy-backend/internal/occupancy"
	"hut-occupancy-backend/internal/weather"
)

// DayWeather is the per-day forecast fragment embedded in responses.
type DayWeather struct {
	TempMinC        *float64 `json:"tempMinC"`
	TempMaxC        *float64 `json:"tempMaxC"`
	PrecipitationMM *float64 `json:"precipitationMm"`
	WeatherCode     *int     `json:"weatherCode"`
	Condition       string   `json:"condition"`
}

// OccupancyDayResponse is one booking date on the occupancy board.
type OccupancyDayResponse struct {
	BookingDate  string      `json:"bookingDate"`
	FreeBeds     int         `json:"freeBeds"`
	Capacity     int         `json:"capacity"`
	Status       string      `json:"status"`
	OnlineBooked int         `json:"onlineBooked"`
	FixBooked    int         `json:"fixBooked"`
	Weather      *DayWeather `json:"weather"`
}

// OccupancyResponse is the latest availability board of one hut.
// RetrievedAt is null when the dataset holds no rows for the hut yet.
type OccupancyResponse struct {
	Hut           string                 `json:"hut"`
	HutID         int64                  `json:"hutId"`
	RetrievedAt   *string                `json:"retrievedAt"`
	FixedCapacity int                    `json:"fixedCapacity"`
	Days          []OccupancyDayResponse `json:"days"`
}

// GetOccupancy handles the GET /api/huts/{hut_id}/occupancy request: the
// latest availability board with the forecast merged per booking date.
func (h *Handler) GetOccupancy(c *gin.Context) {
	d, ok := h.hutFromParam(c)
	if !ok {
		return
	}
	rows, ok := h.readRows(c)
	if !ok {
		return
	}

	resp := OccupancyResponse{
		Hut:           d.Name,
		HutID:         d.UpstreamID,
		FixedCapacity: d.FixedCapacity,
		Days:          []OccupancyDayResponse{},
	}

	if board, ok := occupancy.BuildBoard(rows, d); ok {
		retrieved := history.FormatDate(board.RetrievedAt)
		resp.RetrievedAt = &retrieved
		resp.FixedCapacity = board.FixedCapacity

		forecast := h.forecastByDate(c.Request.Context(), d)
		for _, day := range board.Days {
			dayResp := OccupancyDayResponse{
				BookingDate:  history.FormatDate(day.BookingDate),
				FreeBeds:     day.FreeBeds,
				Capacity:     day.Capacity,
				Status:       day.Status,
				OnlineBooked: day.OnlineBooked,
				FixBooked:    day.FixBooked,
			}
			if w, found := forecast[day.BookingDate]; found {
				dayResp.Weather = toDayWeather(w)
			}
			resp.Days = append(resp.Days, dayResp)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RangeDayResponse is the occupancy envelope of one booking date.
type RangeDayResponse struct {
	BookingDate string `json:"bookingDate"`
	MinOccupied int    `json:"minOccupied"`
	MaxOccupied int    `json:"maxOccupied"`
}

// RangeResponse is the historical occupancy envelope of one hut.
type RangeResponse struct {
	Hut           string             `json:"hut"`
	HutID         int64              `json:"hutId"`
	FixedCapacity int                `json:"fixedCapacity"`
	Days          []RangeDayResponse `json:"days"`
}

// GetRange handles the GET /api/huts/{hut_id}/range request: the minimum and
// maximum occupancy observed per booking date across all retrievals.
func (h *Handler) GetRange(c *gin.Context) {
	d, ok := h.hutFromParam(c)
	if !ok {
		return
	}
	rows, ok := h.readRows(c)
	if !ok {
		return
	}

	fixedCap := d.FixedCapacity
	if board, ok := occupancy.BuildBoard(rows, d); ok {
		fixedCap = board.FixedCapacity
	}

	resp := RangeResponse{
		Hut:           d.Name,
		HutID:         d.UpstreamID,
		FixedCapacity: fixedCap,
		Days:          []RangeDayResponse{},
	}
	for _, r := range occupancy.BuildRange(rows, d, fixedCap) {
		resp.Days = append(resp.Days, RangeDayResponse{
			BookingDate: history.FormatDate(r.BookingDate),
			MinOccupied: r.MinOccupied,
			MaxOccupied: r.MaxOccupied,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// forecastByDate fetches the hut forecast and indexes it by calendar date.
// A forecast failure is logged and yields nil; the availability data is then
// served without weather.
func (h *Handler) forecastByDate(ctx context.Context, d hut.Descriptor) map[time.Time]weather.Day {
	if h.weather == nil {
		return nil
	}
	days, err := h.weather.Forecast(ctx, d.Latitude, d.Longitude)
	if err != nil {
		log.Printf("Warning: weather lookup for %s failed: %v", d.Name, err)
		return nil
	}
	byDate := make(map[time.Time]weather.Day, len(days))
	for _, day := range days {
		byDate[day.Date] = day
	}
	return byDate
}

func toDayWeather(day weather.Day) *DayWeather {
	return &DayWeather{
		TempMinC:        day.TempMinC,
		TempMaxC:        day.TempMaxC,
		PrecipitationMM: day.PrecipitationMM,
		WeatherCode:     day.Code,
		Condition:       string(day.Condition),
	}
}
