package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// FileName is the project-local config file looked up first
const FileName = "videotoframe.yaml"

// Config holds all application configuration
type Config struct {
	// Extraction defaults, used for blank form fields
	OutputDir string `yaml:"output_dir" env:"VTF_OUTPUT_DIR"`
	Prefix    string `yaml:"prefix" env:"VTF_PREFIX"`
	Format    string `yaml:"format" env:"VTF_FORMAT"`
	Quality   int    `yaml:"quality" env:"VTF_QUALITY"`
	ClipFile  string `yaml:"clip_file" env:"VTF_CLIP_FILE"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Window settings
	GUI GUIConfig `yaml:"gui"`

	// MetricsFile, when set, receives job counters in the Prometheus text
	// format after every extraction.
	MetricsFile string `yaml:"metrics_file" env:"VTF_METRICS_FILE"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path" env:"VTF_FFMPEG"`
	ProbePath  string `yaml:"probe_path" env:"VTF_FFPROBE"`
	Threads    int    `yaml:"threads" env:"VTF_THREADS"`
}

type GUIConfig struct {
	Width     float32 `yaml:"width"`
	Height    float32 `yaml:"height"`
	ThumbSize int     `yaml:"thumb_size"`
}

// Load reads configuration from file or returns defaults, then applies
// VTF_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		OutputDir: "frames_out",
		Prefix:    "frame",
		Format:    "png",
		Quality:   2,
		ClipFile:  "recorte.mp4",
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		GUI: GUIConfig{
			Width:     760,
			Height:    720,
			ThumbSize: 240,
		},
	}
}

// UserPath is the per-user config location
func UserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".videotoframe", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./" + FileName,
		"./videotoframe.yml",
	}
	if p := UserPath(); p != "" {
		candidates = append(candidates, p)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
