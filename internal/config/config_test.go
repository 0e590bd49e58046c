package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: /tmp/shots
format: webp
quality: 10
ffmpeg:
  threads: 2
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shots", cfg.OutputDir)
	assert.Equal(t, "webp", cfg.Format)
	assert.Equal(t, 10, cfg.Quality)
	assert.Equal(t, 2, cfg.FFmpeg.Threads)
	// untouched keys keep their defaults
	assert.Equal(t, "frame", cfg.Prefix)
	assert.Equal(t, "ffprobe", cfg.FFmpeg.ProbePath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: file\nquality: 10\n"), 0644))

	t.Setenv("VTF_PREFIX", "env")
	t.Setenv("VTF_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("VTF_THREADS", "6")
	t.Setenv("VTF_METRICS_FILE", "/var/lib/node_exporter/videotoframe.prom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Prefix)
	assert.Equal(t, 10, cfg.Quality)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpeg.BinaryPath)
	assert.Equal(t, 6, cfg.FFmpeg.Threads)
	assert.Equal(t, "/var/lib/node_exporter/videotoframe.prom", cfg.MetricsFile)
}

func TestLoadRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: [1, 2"), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("VTF_QUALITY", "high")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "environment")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Format = "jpg"
	cfg.GUI.Width = 1024

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestContext(t *testing.T) {
	assert.Equal(t, defaultConfig(), FromContext(context.Background()))

	cfg := defaultConfig()
	cfg.Prefix = "ctx"
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
