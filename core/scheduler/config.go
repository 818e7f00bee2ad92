package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the timeslot clock.
type Config struct {
	SlotDurationMinutes int `json:"slot_duration_minutes" yaml:"slot_duration_minutes"`
	// TickMillis is the wall-clock time between two slots. Zero uses the
	// slot duration, which is what a live market wants.
	TickMillis    int `json:"tick_ms" yaml:"tick_ms"`
	FirstTimeslot int `json:"first_timeslot" yaml:"first_timeslot"`
	// Timeslots bounds the run; zero runs until the context is cancelled.
	Timeslots int `json:"timeslots" yaml:"timeslots"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.SlotDurationMinutes == 0 {
		c.SlotDurationMinutes = 60
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SlotDurationMinutes <= 0 {
		return errors.New("slot_duration_minutes must be positive")
	}
	if c.TickMillis < 0 {
		return errors.New("tick_ms must not be negative")
	}
	if c.Timeslots < 0 {
		return errors.New("timeslots must not be negative")
	}
	return nil
}

// SlotDuration returns the simulated length of one timeslot.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMinutes) * time.Minute
}

// Tick returns the wall-clock delay between two timeslots.
func (c Config) Tick() time.Duration {
	if c.TickMillis > 0 {
		return time.Duration(c.TickMillis) * time.Millisecond
	}
	return c.SlotDuration()
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
