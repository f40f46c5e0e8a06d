package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("chrome exited")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindInternal},
		{name: "plain error", err: cause, want: KindInternal},
		{name: "direct", err: Wrap(KindConversion, "convert", cause), want: KindConversion},
		{name: "wrapped by fmt", err: fmt.Errorf("pipeline: %w", New(KindConfiguration, "smtp")), want: KindConfiguration},
		{name: "validation", err: Validation("bad", "name is required"), want: KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	sentinel := errors.New("page load")
	err := Wrap(KindConversion, "load certificate page", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, Is(err, KindConversion))
	assert.False(t, Is(err, KindDelivery))
	assert.Contains(t, err.Error(), "ConversionError: load certificate page: page load")
	assert.Nil(t, Wrap(KindConversion, "noop", nil))
}

func TestHTTPStatusAndCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindDelivery))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindTemplate))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindConversion))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindConfiguration))

	assert.Equal(t, "CONVERSION_ERROR", Code(KindConversion))
	assert.Equal(t, "INTERNAL_ERROR", Code(Kind("Other")))
}
