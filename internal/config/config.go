// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/sceneconv/internal/imaging"
)

// ErrInvalid is returned for a configuration value outside its domain.
var ErrInvalid = errors.New("invalid config")

// Output container formats.
const (
	FormatGLB  = "glb"
	FormatGLTF = "gltf"
)

// Entry modes select what a convert run starts from.
const (
	// ModeAuto converts each root through its animator when it has one.
	ModeAuto = "auto"
	// ModeObject ignores animators and converts the transform hierarchy.
	ModeObject = "object"
	// ModeMerged converts all roots under one synthetic root.
	ModeMerged = "merged"
)

// Config holds all converter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig controls what the writer emits.
type ExportConfig struct {
	Format      string  `yaml:"format"`       // glb or gltf
	ImageFormat string  `yaml:"image_format"` // png, jpeg, bmp, tga or webp
	Skins       bool    `yaml:"skins"`
	Animations  bool    `yaml:"animations"`
	Morphs      bool    `yaml:"morphs"`
	Scale       float32 `yaml:"scale"` // Uniform factor applied to the root
}

// ConvertConfig holds conversion entry settings.
type ConvertConfig struct {
	Mode     string `yaml:"mode"`
	RootName string `yaml:"root_name"` // Synthetic root name in merged mode
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Format:      FormatGLB,
			ImageFormat: "png",
			Skins:       true,
			Animations:  true,
			Morphs:      true,
			Scale:       1,
		},
		Convert: ConvertConfig{
			Mode:     ModeAuto,
			RootName: "RootNode",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Image returns the configured texture format.
func (c *Config) Image() (imaging.Format, error) {
	return imaging.ParseFormat(c.Export.ImageFormat)
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Export.Format) {
	case FormatGLB, FormatGLTF:
	default:
		return fmt.Errorf("export.format %q: %w", c.Export.Format, ErrInvalid)
	}
	if _, err := c.Image(); err != nil {
		return fmt.Errorf("export.image_format: %w", err)
	}
	if c.Export.Scale <= 0 {
		return fmt.Errorf("export.scale %v: %w", c.Export.Scale, ErrInvalid)
	}
	switch c.Convert.Mode {
	case ModeAuto, ModeObject, ModeMerged:
	default:
		return fmt.Errorf("convert.mode %q: %w", c.Convert.Mode, ErrInvalid)
	}
	return nil
}
