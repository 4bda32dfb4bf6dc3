package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultValueEpsilon   = 0.01
)

// Config holds runtime configuration for the availability sync job.
type Config struct {
	DatabaseURL    string
	SIVURL         string
	CENACEURL      string
	TargetDate     string
	RequestTimeout time.Duration
	ValueEpsilon   float64
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.SIVURL = strings.TrimSpace(os.Getenv("SIV_URL"))
	if cfg.SIVURL == "" {
		return cfg, errors.New("SIV_URL is required")
	}

	cfg.CENACEURL = strings.TrimSpace(os.Getenv("CENACE_URL"))
	if cfg.CENACEURL == "" {
		return cfg, errors.New("CENACE_URL is required")
	}

	cfg.TargetDate = strings.TrimSpace(os.Getenv("TARGET_DATE"))
	if cfg.TargetDate == "" {
		cfg.TargetDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", cfg.TargetDate); err != nil {
		return cfg, fmt.Errorf("invalid TARGET_DATE: %w", err)
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("SYNC_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SYNC_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	cfg.ValueEpsilon = defaultValueEpsilon
	if v := strings.TrimSpace(os.Getenv("SYNC_VALUE_EPSILON")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid SYNC_VALUE_EPSILON: %w", err)
		}
		cfg.ValueEpsilon = f
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
