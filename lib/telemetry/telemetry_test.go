package telemetry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitSlog(t *testing.T) {
	InitSlog(true)
	require.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	InitSlog(false)
	require.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	require.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
}
