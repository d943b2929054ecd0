package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load("") away from the host's ~/.config/ncfilter.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefaultValues(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"chunking.min_chunk_bytes", cfg.Chunking.MinChunkBytes, 0},
		{"chunking.unlimited_window_bytes", cfg.Chunking.UnlimitedWindowBytes, 4096},
		{"chunking.default_chunk_bytes", cfg.Chunking.DefaultChunkBytes, 4194304},
		{"chunking.balanced", cfg.Chunking.Balanced, false},
		{"chunking.overrides", cfg.Chunking.Overrides, ""},
		{"filters.format", cfg.Filters.Format, "hdf5"},
		{"filters.suppress", cfg.Filters.Suppress, false},
		{"logging.format", cfg.Logging.Format, "text"},
		{"logging.level", cfg.Logging.Level, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Empty(t, cfg.PluginPath)
	assert.Empty(t, cfg.Filters.Rules)
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	content := `plugin_path:
  - /opt/hdf5/plugins
  - /usr/lib/plugins
chunking:
  min_chunk_bytes: 65536
  balanced: true
  overrides: "time/1,lat/90"
filters:
  format: zarr
  suppress: true
  rules:
    - "*,1,5"
    - "/grp/temp,none"
logging:
  format: json
  level: debug
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/hdf5/plugins", "/usr/lib/plugins"}, cfg.PluginPath)
	assert.Equal(t, 65536, cfg.Chunking.MinChunkBytes)
	assert.Equal(t, 4096, cfg.Chunking.UnlimitedWindowBytes, "unset keys keep defaults")
	assert.True(t, cfg.Chunking.Balanced)
	assert.Equal(t, "time/1,lat/90", cfg.Chunking.Overrides)
	assert.Equal(t, "zarr", cfg.Filters.Format)
	assert.True(t, cfg.Filters.Suppress)
	assert.Equal(t, []string{"*,1,5", "/grp/temp,none"}, cfg.Filters.Rules)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("NCFILTER_CHUNKING_MIN_CHUNK_BYTES", "1024")
	t.Setenv("NCFILTER_FILTERS_SUPPRESS", "true")
	t.Setenv("NCFILTER_LOGGING_FORMAT", "json")
	t.Setenv("NCFILTER_PLUGIN_PATH", "/a"+string(os.PathListSeparator)+"/b")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Chunking.MinChunkBytes)
	assert.True(t, cfg.Filters.Suppress)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"/a", "/b"}, cfg.PluginPath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	content := `chunking:
  min_chunk_bytes: -1
  unlimited_window_bytes: 0
filters:
  format: netcdf3
logging:
  format: xml
  level: loud
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	_, err := Load(cfgPath)
	require.Error(t, err)
	for _, key := range []string{
		"chunking.min_chunk_bytes",
		"chunking.unlimited_window_bytes",
		"filters.format",
		"logging.format",
		"logging.level",
	} {
		assert.Contains(t, err.Error(), key)
	}
}
