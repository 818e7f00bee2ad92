package plugins

import (
	"github.com/kilianp07/balancemkt/config"
	"github.com/kilianp07/balancemkt/core/balancing/logging"
	"github.com/kilianp07/balancemkt/core/factory"
)

func init() {
	_ = RegisterLogStore(config.BackendJSONL, func(conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewJSONLStore(lc.Path)
	})
	_ = RegisterLogStore(config.BackendRotating, func(conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewRotatingJSONLStore(lc.Path, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
	})
	_ = RegisterLogStore(config.BackendSQLite, func(conf map[string]any) (logging.LogStore, error) {
		var lc config.LoggingConfig
		if err := factory.Decode(conf, &lc); err != nil {
			return nil, err
		}
		return logging.NewSQLiteStore(lc.Path)
	})
}
