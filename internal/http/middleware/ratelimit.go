package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"certapi/internal/config"
)

// RateLimit limits requests per client IP over a fixed window.
// Rejections surface as 429 errors for the global ErrorHandler to render.
func RateLimit(cfg config.RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			// probes and scrapes must never be throttled
			switch c.Path() {
			case "/health", "/healthz", "/metrics":
				return true
			}
			return false
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}
