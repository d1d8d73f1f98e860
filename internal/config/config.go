// Package config holds the settings shared by the craftkit commands.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/OCharnyshevich/craft-properties/internal/combine"
)

// EnvPrefix prefixes every environment variable read by ParseEnv.
const EnvPrefix = "CRAFT_"

// Config holds the catalog and combine settings.
type Config struct {
	CatalogPath       string `json:"catalog_path" env:"CATALOG_PATH"` // empty = bundled catalog
	SchemaPath        string `json:"schema_path" env:"SCHEMA_PATH"`   // empty = bundled schema
	ValidateSchema    bool   `json:"validate_schema" env:"VALIDATE_SCHEMA"`
	FatalSchemaErrors bool   `json:"fatal_schema_errors" env:"FATAL_SCHEMA_ERRORS"`
	Policy            string `json:"policy" env:"POLICY"`
	Seed              uint64 `json:"seed" env:"SEED"` // 0 = random
	LogLevel          string `json:"log_level" env:"LOG_LEVEL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ValidateSchema:    true,
		FatalSchemaErrors: true,
		Policy:            combine.ReplaceIfHigher.String(),
		LogLevel:          "info",
	}
}

// ParseEnv overrides cfg with the CRAFT_* variables that are set.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFile reads a JSON config file over a copy of base. Fields missing from
// the file keep base's values; a nil base stands for DefaultConfig.
func LoadFile(path string, base *Config) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if base != nil {
		*cfg = *base
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["catalog"] {
		cfg.CatalogPath = fromFile.CatalogPath
	}
	if !explicitFlags["schema"] {
		cfg.SchemaPath = fromFile.SchemaPath
	}
	if !explicitFlags["validate"] {
		cfg.ValidateSchema = fromFile.ValidateSchema
	}
	if !explicitFlags["fatal"] {
		cfg.FatalSchemaErrors = fromFile.FatalSchemaErrors
	}
	if !explicitFlags["policy"] {
		cfg.Policy = fromFile.Policy
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Validate checks that the policy and log level are known.
func (c *Config) Validate() error {
	var errs []error
	if _, err := combine.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CombinePolicy returns the parsed Policy.
func (c *Config) CombinePolicy() (combine.Policy, error) {
	return combine.ParsePolicy(c.Policy)
}

// Level returns the parsed LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
