package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Pinger checks one backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheHealth is the cache's view for health and stats endpoints.
type CacheHealth interface {
	HealthCheck(ctx context.Context) error
	GetStats() *redis.PoolStats
}

type HealthHandler struct {
	db    Pinger
	cache CacheHealth
}

// NewHealthHandler reports on db and, when configured, the cache.
func NewHealthHandler(db Pinger, cache CacheHealth) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HealthCheck is 503 when the database is unreachable. A cache outage only
// degrades the report; reads fall back to the database.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	services := fiber.Map{"database": "connected"}

	if err := h.db.Ping(ctx); err != nil {
		status = "unavailable"
		code = fiber.StatusServiceUnavailable
		services["database"] = "disconnected"
	}
	if h.cache != nil {
		services["redis"] = "connected"
		if err := h.cache.HealthCheck(ctx); err != nil {
			services["redis"] = "disconnected"
			if code == fiber.StatusOK {
				status = "degraded"
			}
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"services": services,
	})
}

func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache not configured"})
	}
	poolStats := h.cache.GetStats()

	return c.JSON(fiber.Map{
		"pool_stats": fiber.Map{
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
			"timeouts":    poolStats.Timeouts,
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	})
}
