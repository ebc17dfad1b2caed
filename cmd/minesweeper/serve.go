package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over websocket",
	Long: `Starts the websocket server. Every connection on /ws gets its own
board; /health and /metrics are served alongside.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	}

	if err := srv.Shutdown(); err != nil {
		logger.Warn("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
	return nil
}
