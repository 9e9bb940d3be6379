package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Loaded is the effective configuration for one invocation plus where it
// came from.
type Loaded struct {
	Path      string
	Config    Config
	Warnings  []Warning
	Exists    bool
	EnvLoaded bool
}

// Load exports the .env file beside the resolved config path, then layers
// the config file over Default. A missing config file is a warning.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: path, Config: Default()}
	if loaded.EnvLoaded, err = LoadEnvFile(EnvPath(path)); err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; dictating with built-in defaults", path),
		})
		return loaded, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(string(content), loaded.Config)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	loaded.Config = cfg
	loaded.Exists = true
	loaded.Warnings = append(loaded.Warnings, warnings...)
	return loaded, nil
}
