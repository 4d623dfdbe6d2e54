package main

import (
	"fmt"
	"os"

	"imagecutter/internal/cutter"

	"gopkg.in/yaml.v3"
)

const (
	defaultOutputSize = 128
	defaultQuality    = 90
)

// Settings configures the exported cut.
type Settings struct {
	OutputWidth  int    `yaml:"output_width" json:"output_width"`
	OutputHeight int    `yaml:"output_height" json:"output_height"`
	Pixelated    bool   `yaml:"pixelated" json:"pixelated"`
	Format       Format `yaml:"format" json:"format"`
	Quality      int    `yaml:"quality" json:"quality"`
}

// LoadSettings reads a YAML settings file. Fields not set in the file keep
// their zero values.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s, nil
}

// WithDefaults replaces non-positive sizes with 128, an empty format with PNG
// and a missing quality with 90.
func (s Settings) WithDefaults() Settings {
	if s.OutputWidth <= 0 {
		s.OutputWidth = defaultOutputSize
	}
	if s.OutputHeight <= 0 {
		s.OutputHeight = defaultOutputSize
	}
	if s.Format == "" {
		s.Format = FormatPNG
	}
	if s.Quality <= 0 || s.Quality > 100 {
		s.Quality = defaultQuality
	}
	return s
}

// Ratio is the aspect ratio the selection is locked to.
func (s Settings) Ratio() cutter.Ratio {
	return cutter.NewRatio(s.OutputWidth, s.OutputHeight)
}
