package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/pnglet/pkg/png"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "pnglet.yml", `
compression:
  level: 1
  strategy: fixed
filter: paeth
maxIdatSize: 8KB
logLevel: DEBUG
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, *cfg.Compression.Level)
	require.Equal(t, "fixed", cfg.Compression.Strategy)
	require.Equal(t, "paeth", cfg.Filter)
	require.Equal(t, "DEBUG", cfg.LogLevel)

	enc, err := cfg.Encoder()
	require.NoError(t, err)
	require.Equal(t, png.ZlibCodec{Level: 1, Strategy: png.StrategyFixed}, enc.Compressor)
	require.Equal(t, png.FixedFilter(png.FilterPaeth), enc.Policy)
	require.Equal(t, 8*1024, enc.MaxIDATSize)
}

func TestLoadFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	writeConfig(t, dir, filepath.Join("pnglet", "config.yaml"), "filter: up\n")

	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, "up", cfg.Filter)
	require.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestEncoderRejectsBadSettings(t *testing.T) {
	level := 42
	tests := []*Config{
		{Filter: "none", Compression: Compression{Level: &level}},
		{Filter: "none", Compression: Compression{Strategy: "rle"}},
		{Filter: "median"},
		{Filter: "none", MaxIDATSize: "lots"},
	}

	for _, cfg := range tests {
		_, err := cfg.Encoder()
		require.Error(t, err, "%+v", cfg)
	}
}

func TestDefaultEncoder(t *testing.T) {
	enc, err := Default().Encoder()
	require.NoError(t, err)
	require.Equal(t, png.MinSumAbs{}, enc.Policy)
	require.Zero(t, enc.MaxIDATSize)
}
