package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	DBPath     string
	LogLevel   string
	Genre      string
	SiteName   string
	SiteDomain string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:       envOr("ADDR", ":8080"),
		DBPath:     envOr("DB_PATH", "file:xclues.db"),
		LogLevel:   envOr("LOG_LEVEL", "INFO"),
		Genre:      envOr("GENRE", "films"),
		SiteName:   envOr("SITE_NAME", "Xclues"),
		SiteDomain: envOr("SITE_DOMAIN", "xclues.space"),
	}
}

// Validate checks that the configuration is usable.
func Validate(cfg Config) error {
	var problems []string

	if cfg.Addr == "" {
		problems = append(problems, "ADDR must not be empty")
	}
	if cfg.DBPath == "" {
		problems = append(problems, "DB_PATH must not be empty")
	}
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", cfg.LogLevel))
	}
	if cfg.Genre == "" {
		problems = append(problems, "GENRE must not be empty")
	}
	if cfg.SiteDomain == "" {
		problems = append(problems, "SITE_DOMAIN must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
