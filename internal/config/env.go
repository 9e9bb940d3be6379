package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile exports variables from path without overriding ones already set.
// A missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file %q: %w", path, err)
	}
	return true, nil
}

// Credential reads the backend credential from the environment.
// The value is handed to exactly one request and never written back.
func Credential(cfg Config) string {
	return strings.TrimSpace(os.Getenv(cfg.Backend.KeyEnv()))
}
