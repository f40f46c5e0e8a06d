package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"certapi/internal/apperror"
)

// statusOf resolves the status a request will be answered with. Middlewares run
// before the global ErrorHandler writes the response, so a returned error is
// mapped the same way the handler package maps it.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperror.HTTPStatus(apperror.KindOf(err))
}
