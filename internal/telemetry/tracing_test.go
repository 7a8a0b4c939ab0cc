package telemetry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/voyagee/travel-backend/internal/config"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	shutdown, err := Setup(context.Background(), config.TracingConfig{ServiceName: "test"}, logger)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_EndpointDoesNotBlockOnCollector(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	start := time.Now()
	shutdown, err := Setup(context.Background(), config.TracingConfig{
		OTLPEndpoint: "127.0.0.1:1",
		ServiceName:  "test",
	}, logger)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}
