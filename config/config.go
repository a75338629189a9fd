package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

const defaultDataDir = "./wfcash-data"

// Wrapper declares one (currency, maturity) identity to deploy at startup.
type Wrapper struct {
	CurrencyID uint16 `toml:"CurrencyID"`
	Maturity   uint64 `toml:"Maturity"`
}

// Config carries the deployment-level settings of the wrapper stack: where
// the supply ledgers persist, which Market deployment to bind to and which
// wrappers to bring up.
type Config struct {
	DataDir       string    `toml:"DataDir"`
	MarketAddress string    `toml:"MarketAddress"`
	Wrappers      []Wrapper `toml:"Wrappers"`
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for structurally invalid entries.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.MarketAddress) {
		return fmt.Errorf("config: MarketAddress %q is not a valid address", c.MarketAddress)
	}
	seen := make(map[Wrapper]struct{}, len(c.Wrappers))
	for i, w := range c.Wrappers {
		if w.CurrencyID == 0 {
			return fmt.Errorf("config: wrapper %d: CurrencyID must be non-zero", i)
		}
		if w.Maturity == 0 {
			return fmt.Errorf("config: wrapper %d: Maturity must be non-zero", i)
		}
		if _, ok := seen[w]; ok {
			return fmt.Errorf("config: wrapper %d: duplicate identity (currency %d, maturity %d)", i, w.CurrencyID, w.Maturity)
		}
		seen[w] = struct{}{}
	}
	return nil
}

// Market returns the configured Market address.
func (c *Config) Market() common.Address {
	return common.HexToAddress(c.MarketAddress)
}
