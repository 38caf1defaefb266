package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvConfig    = "EXTRATOS_CONFIG"
	EnvLogLevel  = "EXTRATOS_LOG_LEVEL"
	EnvLayout    = "EXTRATOS_LAYOUT"
	EnvEncoding  = "EXTRATOS_ENCODING"
	EnvTolerance = "EXTRATOS_TOLERANCE"
	EnvLanguage  = "EXTRATOS_REPORT_LANGUAGE"
	EnvOutDir    = "EXTRATOS_OUT_DIR"
	EnvPort      = "EXTRATOS_PORT"
)

// LoadDotEnv loads environment variables from envPath, or from ./.env
// when envPath is empty. A missing ./.env is not an error; a missing
// explicit file is.
func LoadDotEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// ApplyEnv overrides cfg fields from EXTRATOS_* variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLayout); v != "" {
		cfg.Statements.Layout = v
	}
	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Statements.Encoding = v
	}
	if v := os.Getenv(EnvTolerance); v != "" {
		cfg.Matching.Tolerance = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Report.Language = v
	}
	if v := os.Getenv(EnvOutDir); v != "" {
		cfg.Report.OutDir = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Resolve builds the effective configuration: .env, then the config file
// (path, $EXTRATOS_CONFIG, or ./extratos.yaml if present), then
// environment overrides, then validation.
func Resolve(path, envPath string) (*Config, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		loaded, err := Load(FileName)
		if err == nil {
			cfg = loaded
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
