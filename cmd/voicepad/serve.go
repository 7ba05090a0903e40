package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicepad/internal/config"
	"voicepad/internal/database"
	"voicepad/internal/handlers"
	"voicepad/internal/logger"
	"voicepad/internal/middleware"
	"voicepad/internal/router"
	"voicepad/internal/sounds"
	"voicepad/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("storage", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Default categories in development (no-op once they exist).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	files, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	catalog, closeCache := a.connectCatalog(ctx)
	defer closeCache()

	deps := a.deps(db, files, catalog)
	mgr := sounds.NewManager(deps)
	cats := sounds.NewCategoryService(deps)

	// Only local backends need the API to serve file bytes; cloud stores
	// hand out their own public URLs.
	var assets *handlers.Assets
	if cfg.StorageDriver == config.StorageLocal || cfg.StorageDriver == config.StorageMemory {
		assets = handlers.NewAssets(files)
	}

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin API is open in development")
	}

	r := router.New(router.Options{
		AdminUser:         cfg.AdminUser,
		AdminPasswordHash: cfg.AdminPasswordHash,
		AllowOpenAdmin:    cfg.IsDev(),
		AdminLimiter:      middleware.NewRateLimiter(ctx, cfg.AdminRateLimit, time.Minute, cfg.TrustProxy),
	},
		handlers.NewPublic(mgr, cats, catalog),
		handlers.NewAdmin(mgr, cats, cfg.MaxUploadBytes()),
		assets,
	)

	// WriteTimeout covers bulk uploads of large files over slow links.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
