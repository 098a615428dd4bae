package config

import "errors"

type PoolConfig struct {
	// Address is the pool's identity on the token and governance ledgers.
	Address string `mapstructure:"address"`
}

func (cfg *PoolConfig) Validate() error {
	if cfg.Address == "" {
		return errors.New("missing pool address")
	}
	return nil
}
