/*
config.go - Server configuration

PURPOSE:
  Loads settings in layers, each overriding the previous:

    defaults  ─▶  YAML file  ─▶  .env file  ─▶  process environment

  Command-line flags in cmd/server override the result.

KEYS:
  server.port              SERVER_PORT              "8080"
  server.shutdown_timeout  SERVER_SHUTDOWN_TIMEOUT  "30s"
  database.path            DATABASE_PATH            "timetable.db"
  database.flush_interval  DATABASE_FLUSH_INTERVAL  "30s"     ("0" disables autosave)
  logging.level            LOG_LEVEL                "info"
  logging.pretty           LOG_PRETTY               false
  engine.strict_ownership  ENGINE_STRICT_OWNERSHIP  false
  cors.allowed_origins     CORS_ALLOWED_ORIGINS     ["*"]   (comma separated in env)

SEE ALSO:
  - cmd/server/main.go: flags and wiring
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Engine   EngineConfig   `yaml:"engine"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port            string `yaml:"port" env:"SERVER_PORT"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	// Path is the SQLite file; ":memory:" keeps everything in RAM.
	Path          string `yaml:"path" env:"DATABASE_PATH"`
	// FlushInterval is how often dirty collections are retried.
	FlushInterval string `yaml:"flush_interval" env:"DATABASE_FLUSH_INTERVAL"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

type EngineConfig struct {
	// StrictOwnership rejects placements where the teacher does not own the
	// subject.
	StrictOwnership bool `yaml:"strict_ownership" env:"ENGINE_STRICT_OWNERSHIP"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads configPath (optional, skipped when missing or empty) and
// dotenvPath (optional), then applies the environment.
func Load(configPath, dotenvPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if dotenvPath != "" {
		// godotenv never overwrites variables already set in the process
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Server.ShutdownTimeout = "30s"
	cfg.Database.Path = "timetable.db"
	cfg.Database.FlushInterval = "30s"
	cfg.Logging.Level = "info"
	cfg.CORS.AllowedOrigins = []string{"*"}
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server port %q is not a valid port", cfg.Server.Port)
	}
	if _, err := cfg.ShutdownTimeout(); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.Database.Path == "" {
		return errors.New("database path is required")
	}
	if d, err := cfg.FlushInterval(); err != nil || d < 0 {
		return fmt.Errorf("invalid flush interval %q", cfg.Database.FlushInterval)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	return nil
}

// ShutdownTimeout parses Server.ShutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}

// FlushInterval parses Database.FlushInterval.
func (c *Config) FlushInterval() (time.Duration, error) {
	return time.ParseDuration(c.Database.FlushInterval)
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
