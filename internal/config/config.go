// Package config loads kinmatch settings: built-in defaults, then an optional
// YAML file, then KINMATCH_* environment variables (a .env file in the
// working directory is read first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when neither the file nor the environment sets one.
const DefaultAPIURL = "http://localhost:5000/api"

// Config holds all client configuration.
type Config struct {
	APIURL  string        `yaml:"api_url" env:"KINMATCH_API_URL"`
	DataDir string        `yaml:"data_dir" env:"KINMATCH_DATA_DIR"`
	Store   string        `yaml:"store" env:"KINMATCH_STORE"`
	Log     LogConfig     `yaml:"log" envPrefix:"KINMATCH_LOG_"`
	Auth    AuthConfig    `yaml:"auth" envPrefix:"KINMATCH_AUTH_"`
	Profile ProfileConfig `yaml:"profile" envPrefix:"KINMATCH_PROFILE_"`
}

// LogConfig holds logging configuration. File "-" logs to stderr.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"`
}

// AuthConfig holds the signing secret for session tokens.
type AuthConfig struct {
	Secret string `yaml:"secret" env:"SECRET"`
}

// ProfileConfig bounds the child age accepted by the profile form.
type ProfileConfig struct {
	AgeMin int `yaml:"age_min" env:"AGE_MIN"`
	AgeMax int `yaml:"age_max" env:"AGE_MAX"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".kinmatch")
	}
	return &Config{
		APIURL:  DefaultAPIURL,
		DataDir: dir,
		Store:   "file",
		Log:     LogConfig{Level: "info"},
		Auth:    AuthConfig{Secret: "kinmatch-local-secret"},
		Profile: ProfileConfig{AgeMin: 0, AgeMax: 18},
	}
}

// DefaultPath returns ~/.kinmatch/config.yaml.
func DefaultPath() string {
	return filepath.Join(Default().DataDir, "config.yaml")
}

// Load builds the configuration. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "kinmatch.log")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and further away.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("config: api_url is required")
	}
	switch c.Store {
	case "file", "sqlite":
	default:
		return fmt.Errorf("config: store must be file or sqlite, got %q", c.Store)
	}
	if c.Profile.AgeMin < 0 || c.Profile.AgeMin > c.Profile.AgeMax {
		return fmt.Errorf("config: invalid age bounds %d..%d", c.Profile.AgeMin, c.Profile.AgeMax)
	}
	if c.Auth.Secret == "" {
		return errors.New("config: auth.secret is required")
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
