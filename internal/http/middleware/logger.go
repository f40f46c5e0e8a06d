package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"certapi/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one JSON object.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func Logger(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := statusOf(c, err)
		args := []any{
			"request_id", RequestIDFromCtx(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error(c.UserContext(), "http_request", args...)
		case status >= fiber.StatusBadRequest:
			log.Warn(c.UserContext(), "http_request", args...)
		default:
			log.Info(c.UserContext(), "http_request", args...)
		}

		return err
	}
}

// LoggerWithWriter writes access logs to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.NewJSON(w, loc))
}
