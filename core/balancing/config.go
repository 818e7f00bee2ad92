package balancing

import (
	"fmt"

	"github.com/kilianp07/balancemkt/core/settlement"
)

// Config holds the settlement parameters of the market.
type Config struct {
	SettlementProcess string  `json:"settlement_process"`
	PPlusPrime        float64 `json:"p_plus_prime"`
	PMinusPrime       float64 `json:"p_minus_prime"`
	// RMPremium scales wholesale prices into regulating-market prices.
	RMPremium float64 `json:"rm_premium"`
	// RMFee is added per kWh on top of the scaled price.
	RMFee float64 `json:"rm_fee"`
	// DefaultSpotPrice per MWh is used when the order book has no prices.
	DefaultSpotPrice float64 `json:"default_spot_price"`
	BalancingCost    float64 `json:"balancing_cost"`
}

const (
	defaultRMPremium = 1.1
	defaultRMFee     = 0.035
	defaultSpotPrice = 30.0
)

// DefaultConfig returns the static process with the stock premium, fee and
// spot price. Zero is a valid fee and spot price, so loaders start from this
// value instead of patching zeros afterwards.
func DefaultConfig() Config {
	return Config{
		SettlementProcess: settlement.KindStatic.String(),
		RMPremium:         defaultRMPremium,
		RMFee:             defaultRMFee,
		DefaultSpotPrice:  defaultSpotPrice,
	}
}

// SetDefaults fills an empty settlement process. Numeric parameters are left
// as configured.
func (c *Config) SetDefaults() {
	if c.SettlementProcess == "" {
		c.SettlementProcess = settlement.KindStatic.String()
	}
}

// Validate checks the parameters. An unknown settlement process is not an
// error here; the market falls back to the static engine.
func (c Config) Validate() error {
	if c.RMPremium <= 0 {
		return fmt.Errorf("rm_premium must be positive, got %g", c.RMPremium)
	}
	if c.DefaultSpotPrice < 0 {
		return fmt.Errorf("default_spot_price must not be negative, got %g", c.DefaultSpotPrice)
	}
	return nil
}
