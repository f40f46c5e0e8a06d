package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certapi/internal/logging"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		kind string
		arg  string
		want string
	}{
		{kind: "always_on", want: "AlwaysOnSampler"},
		{kind: "always_off", want: "AlwaysOffSampler"},
		{kind: "traceidratio", arg: "0.5", want: "TraceIDRatioBased{0.5}"},
		// a ratio of 1 collapses to AlwaysOn
		{kind: "traceidratio", arg: "garbage", want: "AlwaysOnSampler"},
		{kind: "traceidratio", arg: "7", want: "AlwaysOnSampler"},
		{kind: "parentbased_traceidratio", arg: "0.25", want: "ParentBased{root:TraceIDRatioBased{0.25}"},
		{kind: "unknown", want: "ParentBased{root:AlwaysOnSampler"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.arg, func(t *testing.T) {
			got := sampler(tt.kind, tt.arg).Description()
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), logging.NewJSON(&buf, time.UTC))

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"tracing_enabled":false`)
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), logging.NewJSON(&buf, time.UTC))

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tracing_init_failed")
	assert.Contains(t, buf.String(), "carrier-pigeon")
}
