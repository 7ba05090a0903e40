package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicepad/internal/cache"
	"voicepad/internal/config"
	"voicepad/internal/database"
	"voicepad/internal/logger"
	"voicepad/internal/sounds"
	"voicepad/internal/storage"
	"voicepad/internal/store"
)

// app carries what every subcommand needs once the root pre-run has loaded
// configuration and the logger.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "voicepad",
		Short:         "Sound library API with categorised, ordered audio files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return logger.Init(logger.Config{
				Level:      cfg.LogLevel,
				FilePath:   cfg.LogFile,
				MaxSizeMB:  cfg.LogMaxSizeMB,
				MaxBackups: cfg.LogMaxBackups,
				MaxAgeDays: cfg.LogMaxAgeDays,
				Compress:   true,
				Dev:        cfg.IsDev(),
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		// Bare `voicepad` serves, matching container entrypoints.
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newReconcileCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

// openDB connects to PostgreSQL and applies pending migrations.
func (a *app) openDB() (*sql.DB, error) {
	db, err := database.Connect(a.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// connectCatalog returns the catalog cache, or nil when Valkey is disabled
// or unreachable. The API serves uncached in that case.
func (a *app) connectCatalog(ctx context.Context) (*cache.Catalog, func()) {
	if a.cfg.ValkeyHost == "" {
		logger.Warn("valkey not configured, catalog cache disabled")
		return nil, func() {}
	}
	client, err := cache.ConnectValkey(ctx, a.cfg.ValkeyHost, a.cfg.ValkeyPort, a.cfg.ValkeyPassword)
	if err != nil {
		logger.Warn("valkey unavailable, catalog cache disabled", zap.Error(err))
		return nil, func() {}
	}
	return cache.NewCatalog(client, cache.DefaultCatalogTTL), func() { client.Close() }
}

// deps wires the stores, storage backend and cache into the service layer.
func (a *app) deps(db *sql.DB, files storage.Store, catalog *cache.Catalog) sounds.Deps {
	return sounds.Deps{
		Tx:         store.New(db),
		Categories: store.NewCategoryStore(db),
		Sounds:     store.NewSoundStore(db),
		Files:      files,
		Cache:      catalog,
		Limits:     sounds.Limits{MaxSize: a.cfg.MaxUploadBytes()},
	}
}
