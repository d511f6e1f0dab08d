// Package config loads the samadhi JSON configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/samadhi/internal/pose"
	"github.com/ayusman/samadhi/internal/similarity"
)

// maxFileSize bounds the config file size.
const maxFileSize = 1 * 1024 * 1024

// Config is the application configuration. Zero-valued fields in a file
// keep their defaults.
type Config struct {
	Addr         string    `json:"addr"`
	DataDir      string    `json:"data_dir"`
	CameraID     int       `json:"camera_id"`
	CameraMirror bool      `json:"camera_mirror"`
	FPS          float64   `json:"fps"`
	Lambda       float64   `json:"lambda"`
	MinScore     float64   `json:"min_score"`
	Lambdas      []float64 `json:"lambdas"`
	Source       string    `json:"source"`
	// ReferenceVideo is an optional video file the subject follows.
	ReferenceVideo string `json:"reference_video"`
	// ReferenceURL is stored with saved sessions.
	ReferenceURL string `json:"reference_url"`
	WebDir       string `json:"web_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		DataDir:      defaultDataDir(),
		CameraID:     0,
		CameraMirror: true,
		FPS:          15,
		Lambda:       similarity.DefaultLambda,
		MinScore:     80,
		Lambdas:      []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0},
		Source:       pose.SourceWebcam,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".samadhi"
	}
	return filepath.Join(home, ".samadhi")
}

// Load reads the JSON file at path over Default. The file must have a
// .json extension and be at most 1MB.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so omitted keys keep them.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.FPS <= 0 || c.FPS > 120 {
		return fmt.Errorf("fps must be in (0,120], got %v", c.FPS)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("lambda must be between 0 and 1, got %v", c.Lambda)
	}
	for _, l := range c.Lambdas {
		if l < 0 || l > 1 {
			return fmt.Errorf("lambdas must be between 0 and 1, got %v", l)
		}
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score must be between 0 and 100, got %v", c.MinScore)
	}
	if c.CameraID < 0 {
		return fmt.Errorf("camera_id must be non-negative, got %d", c.CameraID)
	}
	if c.Source == "" {
		return fmt.Errorf("source must not be empty")
	}
	if c.ReferenceVideo != "" {
		if info, err := os.Stat(c.ReferenceVideo); err != nil || info.IsDir() {
			return fmt.Errorf("reference_video %q is not a readable file", c.ReferenceVideo)
		}
	}
	return nil
}

// DBPath returns the sqlite database path inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "samadhi.db")
}
