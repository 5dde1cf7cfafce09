package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/config"
	"github.com/khanglvm/orbit/internal/logger"
	"github.com/khanglvm/orbit/internal/storage"
)

// runtime bundles what a command needs once flags are parsed.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.SQLiteStorage
}

// flagBindings maps config keys to flag names shared by all commands.
var flagBindings = map[string]string{
	"database.path": "db",
	"debug":         "debug",
	"log.json":      "json",
}

// loadRuntime resolves configuration, builds the logger and opens storage.
// Extra bindings map config keys to command-local flags.
func loadRuntime(cmd *cobra.Command, extra map[string]string) (*runtime, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, name := range flagBindings {
		if err := bindFlag(v, cmd, key, name); err != nil {
			return nil, err
		}
	}
	for key, name := range extra {
		if err := bindFlag(v, cmd, key, name); err != nil {
			return nil, err
		}
	}

	var cfgFile string
	if f := cmd.Flag("config"); f != nil {
		cfgFile = f.Value.String()
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		if dbPath, err = storage.DefaultPath(); err != nil {
			return nil, err
		}
	}

	store, err := storage.Open(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	log.Debug("runtime ready", zap.String("db", dbPath), zap.String("config", cfg.File))
	return &runtime{cfg: cfg, logger: log, store: store}, nil
}

// bindFlag binds key to the named flag when the command has it. Unset flags
// do not override lower-precedence sources.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) error {
	f := cmd.Flag(name)
	if f == nil {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("binding --%s: %w", name, err)
	}
	return nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = r.logger.Sync()
}
