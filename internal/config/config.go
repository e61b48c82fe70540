// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration for the pipeline service.
type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string
	RedisURL    string

	SearchIntervalHours int     // how often the pipeline cycle fires
	AlertThreshold      float64 // immediate-alert score threshold in [0,1]
	EnabledChannels     []string

	// Search profile used by the scoring engine.
	Skills       []string
	Locations    []string
	RemoteOK     bool
	SalaryTarget float64

	// Board API credentials. Empty credentials disable the adapter (the
	// cycle logs a warning and skips it rather than failing).
	BoardAppID   string
	BoardAppKey  string
	BoardCountry string // e.g. "gb", "us"
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 6
	if s := os.Getenv("SEARCH_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SEARCH_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	threshold := 0.8
	if s := os.Getenv("ALERT_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, fmt.Errorf("ALERT_THRESHOLD must be a float in [0,1], got %q", s)
		}
		threshold = v
	}

	salaryTarget := 0.0
	if s := os.Getenv("SALARY_TARGET"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("SALARY_TARGET must be a non-negative number, got %q", s)
		}
		salaryTarget = v
	}

	channels := splitList(os.Getenv("ENABLED_CHANNELS"))
	if len(channels) == 0 {
		channels = []string{"desktop"}
	}

	country := os.Getenv("BOARD_COUNTRY")
	if country == "" {
		country = "gb"
	}

	port := os.Getenv("PIPELINE_PORT")
	if port == "" {
		port = "8082"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Port:                port,
		LogLevel:            logLevel,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		SearchIntervalHours: interval,
		AlertThreshold:      threshold,
		EnabledChannels:     channels,
		Skills:              splitList(os.Getenv("SKILLS")),
		Locations:           splitList(os.Getenv("LOCATIONS")),
		RemoteOK:            os.Getenv("REMOTE_OK") != "false",
		SalaryTarget:        salaryTarget,
		BoardAppID:          os.Getenv("BOARD_APP_ID"),
		BoardAppKey:         os.Getenv("BOARD_APP_KEY"),
		BoardCountry:        country,
	}, nil
}

// splitList parses a comma-separated env value into trimmed, non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
