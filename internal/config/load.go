package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file used when no --config flag is given.
const EnvConfig = "SCENECONV_CONFIG"

// ProjectFile is looked up from the working directory towards the
// filesystem root, so a config can sit beside a tree of snapshots.
const ProjectFile = "sceneconv.yaml"

// Load builds the configuration from defaults, the located file and the
// command flags, in that order, and validates the result.
func Load(src FlagSource) (*Config, error) {
	cfg := Default()

	path, err := locate(src)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	applyFlags(cfg, src)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// locate returns the config file to read, or "" for none. A path named by
// the flag or EnvConfig must exist; otherwise the nearest ProjectFile wins
// over config.yaml in ConfigDir.
func locate(src FlagSource) (string, error) {
	for _, path := range []string{ConfigPath(src), os.Getenv(EnvConfig)} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return path, nil
	}

	if wd, err := os.Getwd(); err == nil {
		if path := findUp(wd, ProjectFile); path != "" {
			return path, nil
		}
	}
	if path := filepath.Join(ConfigDir(), "config.yaml"); isFile(path) {
		return path, nil
	}
	return "", nil
}

// findUp returns the first dir/name found walking from dir to the root.
func findUp(dir, name string) string {
	for {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// ConfigDir returns the per-user sceneconv directory.
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sceneconv")
}

// loadFromFile merges a YAML file over the values already in cfg. Unknown
// keys are an error; an empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
