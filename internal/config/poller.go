package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	CastPollingInterval  time.Duration `mapstructure:"cast-polling-interval"`
	ActiveProposalsLimit uint64        `mapstructure:"active-proposals-limit"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.CastPollingInterval <= 0 {
		return errors.New("cast-polling-interval must be positive")
	}

	if cfg.ActiveProposalsLimit <= 0 {
		return errors.New("active-proposals-limit must be positive")
	}

	return nil
}
