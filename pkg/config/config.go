// Package config loads server configuration from an optional YAML file with
// environment variable overrides, then validates the result before anything
// starts. A bad config fails fast at boot, not at first request.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port" validate:"required,gt=0,lte=65535"`

	// DataDir holds the graph snapshot. Empty disables persistence.
	DataDir string `yaml:"data_dir"`

	// MaxDepth is the default traversal depth bound.
	MaxDepth int `yaml:"max_depth" validate:"gte=0,lte=25"`

	// MaxVisits is the traversal node-visit budget. Zero selects the
	// built-in default.
	MaxVisits int `yaml:"max_visits" validate:"gte=0"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// CORSAllowedOrigins is the comma-separated allowlist for cross-origin
	// requests. Empty disables CORS headers.
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`

	// UploadMaxBytes bounds accepted upload bodies.
	UploadMaxBytes int64 `yaml:"upload_max_bytes" validate:"gt=0"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Port:           8080,
		DataDir:        "./data/opsgraph",
		MaxDepth:       5,
		MaxVisits:      10000,
		LogLevel:       "info",
		UploadMaxBytes: 16 << 20,
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), applies environment overrides, and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and returns a descriptive error on the
// first violation.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config field %s failed %q validation (value %v)", e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("OPSGRAPH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("OPSGRAPH_MAX_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.MaxDepth = d
		}
	}
	if v := os.Getenv("OPSGRAPH_MAX_VISITS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			cfg.MaxVisits = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = v
	}
	if v := os.Getenv("OPSGRAPH_UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.UploadMaxBytes = n
		}
	}
}
