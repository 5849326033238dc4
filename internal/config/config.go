// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the process settings.
type Config struct {
	Addr        string
	Driver      string
	DatabaseURL string
	SQLitePath  string
	BMI         BMIConfig
	CORSOrigins []string
	GinMode     string
}

// BMIConfig selects the height used for BMI.
type BMIConfig struct {
	HeightM          float64
	UseProfileHeight bool
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Addr:        get("ADDR", ":8080"),
		Driver:      strings.ToLower(get("STORE_DRIVER", DriverSQLite)),
		DatabaseURL: get("DATABASE_URL", ""),
		SQLitePath:  get("SQLITE_PATH", "fastingapi.db"),
		GinMode:     get("GIN_MODE", ""),
	}

	switch cfg.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.Driver)
	}

	height, err := strconv.ParseFloat(get("BMI_HEIGHT_M", "1.72"), 64)
	if err != nil {
		return nil, fmt.Errorf("BMI_HEIGHT_M: %w", err)
	}
	if height <= 0 {
		return nil, fmt.Errorf("BMI_HEIGHT_M: must be positive, got %v", height)
	}
	cfg.BMI.HeightM = height

	cfg.BMI.UseProfileHeight, err = strconv.ParseBool(get("BMI_USE_PROFILE_HEIGHT", "false"))
	if err != nil {
		return nil, fmt.Errorf("BMI_USE_PROFILE_HEIGHT: %w", err)
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, nil
}
