package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hut-occupancy-backend/config"
	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
	"hut-occupancy-backend/internal/mw"
	"hut-occupancy-backend/internal/weather"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s history.Store, registry *hut.Registry, weatherClient *weather.Client) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, registry, weatherClient, cfg.Location())

	rateLimiter := mw.RateLimit(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.CacheResponses(cacheStore, cacheTTL)

	r.GET("/healthz", handler.GetHealth)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/huts
		api.GET("/huts", caching, handler.GetHuts)

		// GET /api/huts/{hut_id}/occupancy
		api.GET("/huts/:hut_id/occupancy", caching, handler.GetOccupancy)

		// GET /api/huts/{hut_id}/range
		api.GET("/huts/:hut_id/range", caching, handler.GetRange)

		// GET /api/huts/{hut_id}/weather
		api.GET("/huts/:hut_id/weather", caching, handler.GetWeather)
	}

	return r
}
