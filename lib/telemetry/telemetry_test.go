package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroTelemetryShutdown(t *testing.T) {
	require.NoError(t, Telemetry{}.Shutdown(context.Background()))
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
}

func TestSlogHandlerLevel(t *testing.T) {
	buf := bytes.NewBuffer(nil)

	quiet := slog.New(newSlogHandler(buf, false))
	quiet.Debug("hidden")
	require.Empty(t, buf.String())

	verbose := slog.New(newSlogHandler(buf, true))
	verbose.Debug("shown", "key", "value")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "value")
}
