package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/balancemkt/core/balancing"
	"github.com/kilianp07/balancemkt/core/metrics"
	"github.com/kilianp07/balancemkt/core/scheduler"
	"github.com/kilianp07/balancemkt/infra/mqtt"
	"github.com/kilianp07/balancemkt/infra/wholesale"
	"github.com/kilianp07/balancemkt/simulator"
)

type Config struct {
	Balancing  balancing.Config `json:"balancing"`
	Scheduler  scheduler.Config `json:"scheduler"`
	Simulation simulator.Config `json:"simulation"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Metrics    metrics.Config   `json:"metrics"`
	Logging    LoggingConfig    `json:"logging"`
	Sentry     SentryConfig     `json:"sentry"`
	Wholesale  wholesale.Config `json:"wholesale"`
}

// Load reads a YAML or JSON file and applies K_ prefixed environment
// overrides, e.g. K_BALANCING__RM_FEE=0.04.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Config{Balancing: balancing.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Balancing.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Simulation.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.Wholesale.SetDefaults()
}

// Validate checks every section. MQTT and wholesale are only checked when
// configured.
func (c Config) Validate() error {
	if err := c.Balancing.Validate(); err != nil {
		return fmt.Errorf("balancing: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if c.Wholesale.BaseURL != "" {
		if err := c.Wholesale.Validate(); err != nil {
			return fmt.Errorf("wholesale: %w", err)
		}
	}
	return nil
}
