package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
	"hut-occupancy-backend/internal/weather"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    history.Store
	registry *hut.Registry
	weather  *weather.Client
	loc      *time.Location
}

// NewHandler creates a new API handler. The weather client may be nil, in
// which case responses simply carry no forecast data. loc is the zone whose
// calendar date counts as today for the hut summaries.
func NewHandler(s history.Store, registry *hut.Registry, weatherClient *weather.Client, loc *time.Location) *Handler {
	return &Handler{
		store:    s,
		registry: registry,
		weather:  weatherClient,
		loc:      loc,
	}
}

// GetHealth handles the GET /healthz request.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
