package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"certapi/internal/apperror"
	"certapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Debug   string   `json:"debug,omitempty"`
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeEnvelope(c, status, errorEnvelope{Code: code, Message: message})
}

func writeEnvelope(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error:     env,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// With debug set, the internal cause of an error is included under error.debug.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return writeFiberError(c, fe)
		}

		kind := apperror.KindOf(err)
		env := errorEnvelope{
			Code:    apperror.Code(kind),
			Message: "internal server error",
		}

		var ae *apperror.Error
		if errors.As(err, &ae) {
			env.Message = ae.Message
			env.Details = ae.Details
		}
		if debug {
			env.Debug = err.Error()
		}
		return writeEnvelope(c, apperror.HTTPStatus(kind), env)
	}
}

func writeFiberError(c *fiber.Ctx, e *fiber.Error) error {
	switch e.Code {
	case fiber.StatusBadRequest:
		msg := e.Message
		if msg == "" || msg == fiber.ErrBadRequest.Message {
			msg = "bad request"
		}
		return writeError(c, e.Code, "BAD_REQUEST", msg)
	case fiber.StatusNotFound:
		return writeError(c, e.Code, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return writeError(c, e.Code, "METHOD_NOT_ALLOWED", "method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return writeError(c, e.Code, "PAYLOAD_TOO_LARGE", "request body too large")
	case fiber.StatusUnsupportedMediaType:
		return writeError(c, e.Code, "UNSUPPORTED_MEDIA_TYPE", "content type must be application/json")
	case fiber.StatusTooManyRequests:
		return writeError(c, e.Code, "TOO_MANY_REQUESTS", "too many requests, please try again later")
	case fiber.StatusServiceUnavailable:
		return writeError(c, e.Code, "SERVICE_UNAVAILABLE", "dependency unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
