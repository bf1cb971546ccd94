package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brainbrowser/application/commands"
	domainconfig "brainbrowser/domain/config"
	"brainbrowser/infrastructure/config"
	"brainbrowser/infrastructure/di"
	"brainbrowser/infrastructure/observability"
	"brainbrowser/infrastructure/persistence/dynamodb"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer cleanup()
	logger := container.Logger
	defer func() { _ = logger.Sync() }()

	if cfg.EnableTracing {
		tp, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName: "brainbrowser",
			Environment: cfg.Environment,
			Endpoint:    cfg.OTelEndpoint,
			SampleRate:  0.1,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Tracer shutdown error", zap.Error(err))
			}
		}()
	}

	if leaser := container.Backend.Leaser; leaser != nil {
		release, err := holdLease(ctx, leaser, cfg, logger)
		if err != nil {
			return err
		}
		defer release()
	}

	if err := container.Session.Start(ctx); err != nil {
		logger.Warn("Session started with errors", zap.Error(err))
	}

	if cfg.ConfigFile != "" {
		base := domainconfig.LoadEngineConfig(cfg.Environment)
		watcher, err := config.NewEngineWatcher(cfg.ConfigFile, base,
			func(ctx context.Context, next domainconfig.EngineConfig) error {
				_, err := container.CommandBus.Send(ctx, commands.ReplaceConfigCommand{Config: next})
				return err
			}, logger.Named("config"))
		if err != nil {
			return fmt.Errorf("watch config file: %w", err)
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      container.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.Store.Backend),
			zap.String("sessionID", container.Session.ID()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Websocket clients hold their connections open; closing the hub ends
	// their streams before Shutdown waits on them.
	container.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}

// holdLease takes the session lease and renews it at half its duration
// until ctx ends. The returned func stops renewing and releases it.
func holdLease(ctx context.Context, leaser *dynamodb.Leaser, cfg *config.Config, logger *zap.Logger) (func(), error) {
	owner := uuid.NewString()
	if host, err := os.Hostname(); err == nil {
		owner = host + "-" + owner
	}
	duration := cfg.Store.LeaseDuration
	if duration <= 0 {
		duration = time.Minute
	}

	lease, err := leaser.Acquire(ctx, cfg.Store.Key, owner, duration)
	if err != nil {
		return nil, fmt.Errorf("acquire session lease: %w", err)
	}

	renewCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(duration / 2)
		defer ticker.Stop()
		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				renewed, err := leaser.Acquire(renewCtx, cfg.Store.Key, owner, duration)
				if err != nil {
					logger.Error("Failed to renew session lease", zap.Error(err))
					continue
				}
				lease = renewed
			}
		}
	}()

	return func() {
		cancel()
		<-done
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer releaseCancel()
		if err := lease.Release(releaseCtx); err != nil {
			logger.Warn("Failed to release session lease", zap.Error(err))
		}
	}, nil
}
