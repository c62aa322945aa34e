package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheck reports whether the service and its database are reachable.
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "healthy"
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, map[string]string{
			"status":  status,
			"service": "nano-social",
		})
	}
}
