package simulator

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives the simulated retail market.
type Config struct {
	Brokers int   `json:"brokers" yaml:"brokers"`
	Seed    int64 `json:"seed" yaml:"seed"`
	// NetLoadMeanKWh is the mean metered net load per broker and timeslot.
	// Consumption is negative.
	NetLoadMeanKWh   float64 `json:"net_load_mean_kwh" yaml:"net_load_mean_kwh"`
	NetLoadStdDevKWh float64 `json:"net_load_stddev_kwh" yaml:"net_load_stddev_kwh"`
	// ForecastErrorKWh is the standard deviation of the gap between the
	// wholesale position and the metered load, i.e. of the imbalance.
	ForecastErrorKWh float64 `json:"forecast_error_kwh" yaml:"forecast_error_kwh"`
	// OrderProbability is the chance a broker offers an order per timeslot.
	OrderProbability float64 `json:"order_probability" yaml:"order_probability"`
	// DownShare is the share of offered orders that regulate down.
	DownShare      float64 `json:"down_share" yaml:"down_share"`
	OrderPriceMin  float64 `json:"order_price_min" yaml:"order_price_min"`
	OrderPriceMax  float64 `json:"order_price_max" yaml:"order_price_max"`
	CapacityMaxKWh float64 `json:"capacity_max_kwh" yaml:"capacity_max_kwh"`
	// Wholesale order book, prices per MWh.
	ClearingTrades      int     `json:"clearing_trades" yaml:"clearing_trades"`
	ClearingPriceMean   float64 `json:"clearing_price_mean" yaml:"clearing_price_mean"`
	ClearingPriceStdDev float64 `json:"clearing_price_stddev" yaml:"clearing_price_stddev"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Brokers == 0 {
		c.Brokers = 3
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.NetLoadMeanKWh == 0 {
		c.NetLoadMeanKWh = -200
	}
	if c.NetLoadStdDevKWh == 0 {
		c.NetLoadStdDevKWh = 40
	}
	if c.ForecastErrorKWh == 0 {
		c.ForecastErrorKWh = 15
	}
	if c.OrderProbability == 0 {
		c.OrderProbability = 0.6
	}
	if c.OrderPriceMax == 0 {
		c.OrderPriceMin, c.OrderPriceMax = 0.02, 0.08
	}
	if c.CapacityMaxKWh == 0 {
		c.CapacityMaxKWh = 20
	}
	if c.ClearingTrades == 0 {
		c.ClearingTrades = 4
	}
	if c.ClearingPriceMean == 0 {
		c.ClearingPriceMean = 40
	}
	if c.ClearingPriceStdDev == 0 {
		c.ClearingPriceStdDev = 8
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Brokers <= 0 {
		return errors.New("brokers must be positive")
	}
	if c.NetLoadStdDevKWh < 0 || c.ForecastErrorKWh < 0 || c.ClearingPriceStdDev < 0 {
		return errors.New("standard deviations must not be negative")
	}
	for name, p := range map[string]float64{"order_probability": c.OrderProbability, "down_share": c.DownShare} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g", name, p)
		}
	}
	if c.OrderPriceMin > c.OrderPriceMax {
		return fmt.Errorf("order_price_min %g above order_price_max %g", c.OrderPriceMin, c.OrderPriceMax)
	}
	if c.CapacityMaxKWh < 0 || c.ClearingTrades < 0 {
		return errors.New("capacity_max_kwh and clearing_trades must not be negative")
	}
	return nil
}

// LoadConfig reads a YAML simulation file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
