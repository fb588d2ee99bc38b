package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/metrics"
	"github.com/vaibhav-sd/MissionControlProject/internal/server"
	"github.com/vaibhav-sd/MissionControlProject/internal/service"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the background sync and expose it over HTTP and gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := opts.loadConfig("stdout", false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting mission client",
		zap.String("remote", cfg.Remote.BaseURL),
		zap.Duration("poll_interval", cfg.Sync.PollInterval),
		zap.Int("server_port", cfg.Server.Port),
	)

	session, err := service.NewSession(cfg, logger)
	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		return err
	}
	defer session.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := session.Start(ctx); err != nil {
		return err
	}

	// Start metrics server if enabled
	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, logger)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
		logger.Info("metrics server started",
			zap.Int("port", cfg.Metrics.Port),
			zap.String("path", cfg.Metrics.Path),
		)
	}

	errChan := make(chan error, 2)

	var grpcServer *server.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = server.NewGRPCServer(cfg.GRPC, session.Monitor(), logger)
		go func() {
			if err := grpcServer.Start(); err != nil {
				errChan <- err
			}
		}()
	}

	httpServer := server.NewServer(cfg, session, logger)
	httpServer.SetupRoutes()

	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err = <-errChan:
		logger.Error("server error", zap.Error(err))
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	logger.Info("initiating graceful shutdown")
	session.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("failed to shutdown HTTP server", zap.Error(shutdownErr))
	}

	if grpcServer != nil {
		grpcServer.Stop()
	}

	if metricsServer != nil {
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(shutdownErr))
		}
	}

	logger.Info("mission client shutdown complete")
	return err
}
