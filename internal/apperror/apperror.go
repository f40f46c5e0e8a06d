// Package apperror defines the error taxonomy shared by the certificate pipeline
// and the HTTP layer. Callers classify failures with KindOf and keep matching
// wrapped causes with errors.Is.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for propagation and HTTP mapping.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindTemplate      Kind = "TemplateError"
	KindConversion    Kind = "ConversionError"
	KindConfiguration Kind = "ConfigurationError"
	KindDelivery      Kind = "DeliveryError"
	KindNotFound      Kind = "NotFoundError"
	KindInternal      Kind = "InternalServerError"
)

// Error is a classified failure. Message is safe to show to clients; Err holds the cause.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation returns a validation error carrying field-level messages.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code maps a kind to the machine-readable code used in the error envelope.
func Code(kind Kind) string {
	switch kind {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindTemplate:
		return "TEMPLATE_ERROR"
	case KindConversion:
		return "CONVERSION_ERROR"
	case KindConfiguration:
		return "CONFIGURATION_ERROR"
	case KindDelivery:
		return "DELIVERY_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}
