// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first (convenient in
// development); real environment variables always win over it. Every value
// has a sensible default, so `go run ./cmd/server` works with no setup —
// only production deployments need to set anything.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port           int           // PORT, default 8080
	DBPath         string        // DB_PATH, default data/vcard.db
	AllowedOrigins []string      // ALLOWED_ORIGINS (comma-separated), default http://localhost:3000
	SessionTTL     time.Duration // SESSION_TTL_HOURS, default 168 (7 days)
	SessionSweep   string        // SESSION_SWEEP_SCHEDULE cron spec, default "@hourly"; "" or "off" disables
	LogLevel       slog.Level    // LOG_LEVEL: debug, info, warn, error (default debug)
}

// Load reads .env (if present) and the environment, and validates the result.
func Load() (*Config, error) {
	// Missing .env is not an error — production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         8080,
		DBPath:       "data/vcard.db",
		SessionTTL:   7 * 24 * time.Hour,
		SessionSweep: "@hourly",
		LogLevel:     slog.LevelDebug,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	cfg.AllowedOrigins = parseOrigins(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("config: invalid SESSION_TTL_HOURS %q", v)
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}

	if v, ok := os.LookupEnv("SESSION_SWEEP_SCHEDULE"); ok {
		if strings.EqualFold(strings.TrimSpace(v), "off") {
			v = ""
		}
		cfg.SessionSweep = strings.TrimSpace(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// parseOrigins splits a comma-separated origin list, dropping empties.
func parseOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", s)
}
