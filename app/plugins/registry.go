// Package plugins maps configuration names to the settlement log store
// backends.
package plugins

import (
	"github.com/kilianp07/balancemkt/config"
	"github.com/kilianp07/balancemkt/core/balancing/logging"
	"github.com/kilianp07/balancemkt/core/factory"
)

var logStores = factory.NewRegistry[logging.LogStore]()

// RegisterLogStore adds a log store backend identified by name.
func RegisterLogStore(name string, f factory.Factory[logging.LogStore]) error {
	return logStores.Register(name, f)
}

// LogStoreNames lists the registered backends.
func LogStoreNames() []string { return logStores.Names() }

// NewLogStore opens the backend selected by cfg.Backend.
func NewLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	cfg.SetDefaults()
	return logStores.Create(factory.ModuleConfig{
		Type: cfg.Backend,
		Conf: map[string]any{
			"path":         cfg.Path,
			"max_size_mb":  cfg.MaxSizeMB,
			"max_backups":  cfg.MaxBackups,
			"max_age_days": cfg.MaxAgeDays,
		},
	})
}
