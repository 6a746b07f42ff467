package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "catapult.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CATAPULT_PORT")
	setString(&cfg.Server.CORSOrigin, "CATAPULT_CORS_ORIGIN")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CATAPULT_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CATAPULT_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CATAPULT_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CATAPULT_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CATAPULT_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.LLM.BaseURL, "CATAPULT_LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.Model, "CATAPULT_LLM_MODEL")
	setInt(&cfg.LLM.MaxTokens, "CATAPULT_LLM_MAX_TOKENS")
	setDuration(&cfg.LLM.Timeout, "CATAPULT_LLM_TIMEOUT")

	setString(&cfg.Amadeus.BaseURL, "AMADEUS_BASE_URL")
	setString(&cfg.Amadeus.ClientID, "AMADEUS_CLIENT_ID")
	setString(&cfg.Amadeus.ClientSecret, "AMADEUS_CLIENT_SECRET")
	setDuration(&cfg.Amadeus.Timeout, "CATAPULT_AMADEUS_TIMEOUT")

	setString(&cfg.Calendar.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Calendar.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Calendar.TokenFile, "GOOGLE_TOKEN_FILE")
	setString(&cfg.Calendar.CalendarID, "GOOGLE_CALENDAR_ID")
	setDuration(&cfg.Calendar.Timeout, "CATAPULT_CALENDAR_TIMEOUT")

	setString(&cfg.Logging.Level, "CATAPULT_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CATAPULT_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "CATAPULT_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "CATAPULT_BREAKER_TIMEOUT")

	setInt64(&cfg.Cache.MaxSizeMB, "CATAPULT_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "CATAPULT_CACHE_TTL")

	setInt(&cfg.Planner.MaxHops, "CATAPULT_PLANNER_MAX_HOPS")
	setInt(&cfg.Planner.MaxToolTurns, "CATAPULT_PLANNER_MAX_TOOL_TURNS")
	setDuration(&cfg.Planner.HopTimeout, "CATAPULT_PLANNER_HOP_TIMEOUT")
	setInt(&cfg.Planner.Retries, "CATAPULT_PLANNER_RETRIES")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Planner.MaxHops < 1 {
		return errors.New("planner.max_hops must be >= 1")
	}
	if cfg.Planner.MaxToolTurns < 1 {
		return errors.New("planner.max_tool_turns must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
