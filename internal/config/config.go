package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Brussels on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
)

const envPrefix = "CLUBGATE_"

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":9090"`

	// DB
	Env    string `env:"ENV" envDefault:"dev"` // "dev" | "prod"
	DBPath string `env:"DB_PATH" envDefault:"./data/clubgate.db"`
	// SeedDev loads the demo members at startup. Ignored outside dev.
	SeedDev bool `env:"SEED_DEV" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Access policy
	DefaultLocation   string        `env:"DEFAULT_LOCATION" envDefault:"Ixelles"`
	InsuranceFeeCents int64         `env:"INSURANCE_FEE_CENTS" envDefault:"4000"`
	InsuranceNote     string        `env:"INSURANCE_NOTE" envDefault:"Assurance annuelle"`
	ScanTimeout       time.Duration `env:"SCAN_TIMEOUT" envDefault:"3s"`
	DuplicateWindow   time.Duration `env:"DUPLICATE_WINDOW" envDefault:"0s"`
	Timezone          string        `env:"TIMEZONE" envDefault:"Europe/Brussels"`

	// Redis member lock; empty RedisAddr keeps the in-process lock.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL       time.Duration `env:"LOCK_TTL" envDefault:"10s"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	location *time.Location
}

// FromEnv reads CLUBGATE_* variables, applies defaults and validates.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalises fields and resolves the timezone.
func (c *Config) Validate() error {
	var errs []error

	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env != "dev" && c.Env != "prod" {
		errs = append(errs, fmt.Errorf("%sENV must be dev or prod, got %q", envPrefix, c.Env))
	}
	if strings.TrimSpace(c.DefaultLocation) == "" {
		errs = append(errs, fmt.Errorf("%sDEFAULT_LOCATION must not be empty", envPrefix))
	}
	if c.InsuranceFeeCents < 0 {
		errs = append(errs, fmt.Errorf("%sINSURANCE_FEE_CENTS must be >= 0", envPrefix))
	}
	if strings.TrimSpace(c.InsuranceNote) == "" {
		errs = append(errs, fmt.Errorf("%sINSURANCE_NOTE must not be empty", envPrefix))
	}
	if c.ScanTimeout < 0 || c.DuplicateWindow < 0 || c.LockTTL < 0 {
		errs = append(errs, fmt.Errorf("%sSCAN_TIMEOUT, DUPLICATE_WINDOW and LOCK_TTL must not be negative", envPrefix))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("%sTIMEZONE: %w", envPrefix, err))
	}
	c.location = loc

	return errors.Join(errs...)
}

// Location is the resolved Timezone. UTC before Validate has run.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c Config) UseRedisLock() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
