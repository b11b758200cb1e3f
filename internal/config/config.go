package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/insightdelivered/statement-normalizer/internal/models"
	"github.com/insightdelivered/statement-normalizer/internal/parser"
)

// Config holds application configuration
type Config struct {
	LogLevel   string `yaml:"log_level"`
	ListenAddr string `yaml:"listen_addr"`
	Workers    int    `yaml:"workers"`

	// Years overrides the assumed statement year of formats whose dates
	// carry none.
	Years map[models.Format]int `yaml:"-"`
}

// fileConfig is the YAML layout; year keys accept format aliases.
type fileConfig struct {
	Config `yaml:",inline"`
	Years  map[string]int `yaml:"years"`
}

const yearEnvPrefix = "STATEMENT_YEAR_"

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file if present, and STATEMENT_* environment variables, in
// increasing order of precedence.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   "info",
		ListenAddr: ":8080",
		Workers:    4,
		Years:      map[models.Format]int{},
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.LogLevel = getEnv("STATEMENT_LOG_LEVEL", cfg.LogLevel)
	cfg.ListenAddr = getEnv("STATEMENT_LISTEN_ADDR", cfg.ListenAddr)
	cfg.Workers = getEnvAsInt("STATEMENT_WORKERS", cfg.Workers)

	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		name, ok := strings.CutPrefix(key, yearEnvPrefix)
		if !ok {
			continue
		}
		if err := cfg.setYear(name, value); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	fc := fileConfig{Config: *c}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.SetStrict(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	years := c.Years
	*c = fc.Config
	c.Years = years
	for name, year := range fc.Years {
		if err := c.setYear(name, strconv.Itoa(year)); err != nil {
			return fmt.Errorf("config %s: years.%s: %w", path, name, err)
		}
	}
	return nil
}

func (c *Config) setYear(name, value string) error {
	format, err := parser.ParseFormat(name)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || year < 1900 || year > 2999 {
		return fmt.Errorf("invalid year %q", value)
	}
	c.Years[format] = year
	return nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
