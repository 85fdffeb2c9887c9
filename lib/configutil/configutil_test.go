package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string `json:"name"`
	Key     string `json:"key" env:"CONFIGUTIL_TEST_KEY"`
	Retries int    `json:"retries"`
	Nested  struct {
		File string `json:"file"`
	} `json:"nested"`
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalName("config.json5"))
	require.Equal(t, "dir/a.local.json", LocalName("dir/a.json"))
}

func TestReadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")

	err := os.WriteFile(path, []byte(`{
		// comments are allowed
		name: "base",
		retries: 2,
		nested: { file: "a.db" },
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(LocalName(path), []byte(`{ nested: { file: "b.db" } }`), 0600)
	require.NoError(t, err)

	t.Setenv("CONFIGUTIL_TEST_KEY", "from-env")

	defaults := testConfig{Name: "default", Retries: 1}
	cfg, err := ReadConfig(path, defaults)
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Name)
	require.Equal(t, 2, cfg.Retries)
	require.Equal(t, "b.db", cfg.Nested.File)
	require.Equal(t, "from-env", cfg.Key)
}

func TestReadConfigMissingFile(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "nope.json5"), testConfig{Name: "default"})
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
}

func TestReadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{ name: `), 0600))
	_, err := ReadConfig(path, testConfig{})
	require.Error(t, err)
}
