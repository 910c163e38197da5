package config

import "github.com/urfave/cli"

// FlagSource is the part of a command context the overrides read.
type FlagSource interface {
	String(name string) string
	Bool(name string) bool
	Float64(name string) float64
}

var _ FlagSource = (*cli.Context)(nil)

// Flags returns the command-line flags that override configuration values.
func Flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "Path to config file"},
		cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		cli.StringFlag{Name: "log-file", Usage: "Also write logs to this file"},
		cli.StringFlag{Name: "format", Usage: "Output format: glb or gltf"},
		cli.StringFlag{Name: "image-format", Usage: "Texture format: png, jpeg, bmp, tga or webp"},
		cli.Float64Flag{Name: "scale", Usage: "Uniform scale applied to the root node"},
		cli.StringFlag{Name: "mode", Usage: "Entry mode: auto, object or merged"},
		cli.BoolFlag{Name: "no-skins", Usage: "Do not export skins"},
		cli.BoolFlag{Name: "no-animations", Usage: "Do not export animations"},
		cli.BoolFlag{Name: "no-morphs", Usage: "Do not export blend shapes"},
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath(src FlagSource) string {
	return src.String("config")
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, src FlagSource) {
	if src.Bool("debug") {
		cfg.Logging.Level = "debug"
	}
	if v := src.String("log-file"); v != "" {
		cfg.Logging.LogFile = v
	}
	if v := src.String("format"); v != "" {
		cfg.Export.Format = v
	}
	if v := src.String("image-format"); v != "" {
		cfg.Export.ImageFormat = v
	}
	if v := src.Float64("scale"); v > 0 {
		cfg.Export.Scale = float32(v)
	}
	if v := src.String("mode"); v != "" {
		cfg.Convert.Mode = v
	}
	if src.Bool("no-skins") {
		cfg.Export.Skins = false
	}
	if src.Bool("no-animations") {
		cfg.Export.Animations = false
	}
	if src.Bool("no-morphs") {
		cfg.Export.Morphs = false
	}
}
