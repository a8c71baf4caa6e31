package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdog/internal/shared/testutil"
)

// Metrics stay off here: the Prometheus exporter registers collectors with
// the process-wide default registry, and the app test already claims it.
func TestInitializeOTel_Tracing(t *testing.T) {
	logger, _ := testutil.NewLogger(t)

	providers, err := InitializeOTel(&OTelConfig{
		EnableTracing: true,
		EnableMetrics: false,
		SampleRatio:   1.0,
	}, logger)
	require.NoError(t, err)

	require.NotNil(t, providers.TracerProvider)
	require.NotNil(t, providers.Tracer)
	assert.Nil(t, providers.PrometheusHTTP)

	_, span := providers.Tracer.Start(context.Background(), "test.span")
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	logger, _ := testutil.NewLogger(t)

	providers, err := InitializeOTel(&OTelConfig{}, logger)
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NoError(t, providers.Shutdown(context.Background()))
}
