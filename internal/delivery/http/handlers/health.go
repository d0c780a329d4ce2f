package handlers

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Healthz reports db and redis reachability.
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx := c.Request().Context()
	status := map[string]string{"postgres": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		return c.JSON(503, status)
	}
	return c.JSON(200, status)
}
