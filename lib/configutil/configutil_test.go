package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Listen   string            `json:"listen"`
	Attempts int               `json:"attempts"`
	Headless bool              `json:"headless"`
	Headers  map[string]string `json:"headers"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments and trailing commas are fine
		listen: "0.0.0.0:8000",
		attempts: 1,
		headers: { a: "1" },
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "0.0.0.0:8000", cfg.Listen)
	require.Equal(t, 1, cfg.Attempts)
	require.Equal(t, "1", cfg.Headers["a"])

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		attempts: 3,
		headless: true,
	}`)

	cfg, err = ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "0.0.0.0:8000", cfg.Listen, "fields absent from the local file are kept")
	require.Equal(t, 3, cfg.Attempts)
	require.True(t, cfg.Headless)
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ listen: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}

func TestReadConfigEnvironmentLayer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ listen: "0.0.0.0:8000", attempts: 1 }`)
	writeFile(t, filepath.Join(dir, "config.production.json5"), `{ attempts: 2, headless: true }`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ attempts: 5 }`)

	t.Setenv(EnvironmentVar, "production")
	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8000", cfg.Listen)
	require.True(t, cfg.Headless)
	require.Equal(t, 5, cfg.Attempts, "the local layer wins over the environment layer")

	t.Setenv(EnvironmentVar, "")
	cfg, err = ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.False(t, cfg.Headless)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ attempts: 4 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Attempts)
}

func TestLayers(t *testing.T) {
	t.Setenv(EnvironmentVar, "")
	require.Equal(t, []string{"a/telemetry.json5", "a/telemetry.local.json5"}, layers("a/telemetry.json5"))

	t.Setenv(EnvironmentVar, "ci")
	require.Equal(t, []string{"noext", "noext.ci", "noext.local"}, layers("noext"))
}
