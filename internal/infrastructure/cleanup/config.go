package cleanup

import (
	"time"

	"github.com/AtRiskMedia/scarcity-go/pkg/config"
)

// Config holds sweep worker configuration.
type Config struct {
	SweepInterval    time.Duration
	VerboseReporting bool
}

// NewConfig derives the worker configuration from the loaded process config.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		SweepInterval:    cfg.SweepInterval,
		VerboseReporting: cfg.SweepVerbose,
	}
}
