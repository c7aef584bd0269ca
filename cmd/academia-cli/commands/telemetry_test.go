package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(previous)
	})
}

func TestInitTelemetry(t *testing.T) {
	chdir(t, t.TempDir())

	shutdown, err := initTelemetry(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestInitTelemetryBadConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "telemetry.json5"), []byte(`{ otlp: `), 0600)
	require.NoError(t, err)
	chdir(t, dir)

	_, err = initTelemetry(context.Background(), false)
	require.Error(t, err)

	rootCmd.SetContext(context.Background())
	err = rootCmd.PersistentPreRunE(rootCmd, nil)
	require.ErrorContains(t, err, "setup telemetry")
}
