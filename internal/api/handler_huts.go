package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
	"hut-occupancy-backend/internal/occupancy"
)

// HutResponse represents the API response for a single hut marker.
type HutResponse struct {
	Name          string  `json:"name"`
	HutID         int64   `json:"hutId"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	FixedCapacity int     `json:"fixedCapacity"`
	FreeBeds      *int    `json:"freeBeds"`
	BookingDate   *string `json:"bookingDate"`
	Stale         bool    `json:"stale"`
}

// GetHuts handles the GET /api/huts request: every registered hut with its
// coordinates and the free beds for today, or for the next future booking
// date when today has no data.
func (h *Handler) GetHuts(c *gin.Context) {
	rows, ok := h.readRows(c)
	if !ok {
		return
	}

	summaries := occupancy.Summarize(rows, h.registry, time.Now().In(h.loc))

	responses := make([]HutResponse, 0, len(summaries))
	for _, s := range summaries {
		resp := HutResponse{
			Name:          s.Hut.Name,
			HutID:         s.Hut.UpstreamID,
			Latitude:      s.Hut.Latitude,
			Longitude:     s.Hut.Longitude,
			FixedCapacity: s.Hut.FixedCapacity,
			FreeBeds:      s.FreeBeds,
			Stale:         s.Stale,
		}
		if s.BookingDate != nil {
			d := history.FormatDate(*s.BookingDate)
			resp.BookingDate = &d
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// hutFromParam resolves the hut_id path parameter against the registry.
func (h *Handler) hutFromParam(c *gin.Context) (hut.Descriptor, bool) {
	hutID, err := strconv.ParseInt(c.Param("hut_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid hut ID"})
		return hut.Descriptor{}, false
	}
	d, ok := h.registry.ByID(hutID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown hut ID"})
		return hut.Descriptor{}, false
	}
	return d, true
}

func (h *Handler) readRows(c *gin.Context) ([]history.Row, bool) {
	rows, err := h.store.ReadAll()
	if err != nil {
		log.Printf("Error reading history dataset: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history dataset"})
		return nil, false
	}
	return rows, true
}
