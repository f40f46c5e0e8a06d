package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"certapi/internal/storage"
)

const healthTimeout = 2 * time.Second

// HealthCheck godoc
// @Summary      Readiness probe
// @Description  Pings the metadata database and the object storage bucket when they are configured.
// @Tags         meta
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(db *sql.DB, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		checks := fiber.Map{"database": "disabled", "storage": "disabled"}
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fiber.ErrServiceUnavailable
			}
			checks["database"] = "ok"
		}
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				return fiber.ErrServiceUnavailable
			}
			checks["storage"] = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": checks})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
