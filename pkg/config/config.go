// Package config loads the static configuration of the sale: server and
// worker settings from the environment and the package catalog from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, immutable after Load.
type Config struct {
	// Server Configuration
	Port               string        `env:"PORT" envDefault:"8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	GinMode            string        `env:"GIN_MODE" envDefault:"release"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Reservations
	ReservationTTL time.Duration `env:"RESERVATION_TTL" envDefault:"15m"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"45s"`
	SweepVerbose   bool          `env:"SWEEP_VERBOSE" envDefault:"false"`

	// Sale window
	SaleStart    time.Time     `env:"SALE_START"`
	SaleDuration time.Duration `env:"SALE_DURATION" envDefault:"48h"`

	// Live updates
	BroadcastInterval time.Duration `env:"BROADCAST_INTERVAL" envDefault:"30s"`

	// Urgency thresholds
	LowStock     uint `env:"URGENCY_LOW_STOCK" envDefault:"5"`
	VeryLowStock uint `env:"URGENCY_VERY_LOW_STOCK" envDefault:"2"`
	LastChance   uint `env:"URGENCY_LAST_CHANCE" envDefault:"1"`

	CatalogFile string `env:"CATALOG_FILE"`

	// Admin
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	AdminTokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h"`

	// Sale journal
	JournalURL string `env:"JOURNAL_URL"`

	// Sold-out alerts
	ResendAPIKey   string `env:"RESEND_API_KEY"`
	AlertEmailFrom string `env:"ALERT_EMAIL_FROM" envDefault:"noreply@example.com"`
	AlertEmailTo   string `env:"ALERT_EMAIL_TO"`

	// Logging
	LogDir    string `env:"LOG_DIR" envDefault:"logs"`
	LogToFile bool   `env:"LOG_TO_FILE" envDefault:"false"`
	LogJSON   bool   `env:"LOG_JSON" envDefault:"true"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`

	Catalog Catalog `env:"-"`
}

// Load reads an optional .env file, parses the environment and resolves the
// package catalog. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err == nil {
		log.Println("Loading configuration overrides from .env file...")
	}
	return Parse()
}

// Parse builds a Config from the current environment without touching .env.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.CatalogFile != "" {
		catalog, err := LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = *catalog
	} else {
		cfg.Catalog = DefaultCatalog()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Thresholds returns the urgency thresholds.
func (c *Config) Thresholds() scarcity.Thresholds {
	return scarcity.Thresholds{
		LowStock:     c.LowStock,
		VeryLowStock: c.VeryLowStock,
		LastChance:   c.LastChance,
	}
}

// AdminEnabled reports whether the dashboard login is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.JWTSecret != ""
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.ReservationTTL <= 0 {
		return fmt.Errorf("config: RESERVATION_TTL must be positive, got %s", c.ReservationTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.BroadcastInterval <= 0 {
		return fmt.Errorf("config: BROADCAST_INTERVAL must be positive, got %s", c.BroadcastInterval)
	}
	if c.SaleDuration <= 0 {
		return fmt.Errorf("config: SALE_DURATION must be positive, got %s", c.SaleDuration)
	}
	if c.LastChance > c.VeryLowStock || c.VeryLowStock > c.LowStock {
		return fmt.Errorf("config: urgency thresholds must satisfy last chance <= very low <= low (%d, %d, %d)",
			c.LastChance, c.VeryLowStock, c.LowStock)
	}
	return c.Catalog.Validate()
}
