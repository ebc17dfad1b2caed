package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "minesweeper",
	Short: "Minesweeper game server and terminal client",
	Long: `Minesweeper deals square-grid boards and plays them either over a
websocket (serve) or in the terminal (play). Hitting a mine ends the board
and a fresh one with the same size and mine count is dealt immediately.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if env := os.Getenv("CONFIG_PATH"); env != "" && !cmd.Flags().Changed("config") {
			path = env
		}

		var err error
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
		} else if cmd.Flags().Changed("config") {
			return fmt.Errorf("failed to load configuration: %w", statErr)
		} else {
			cfg = config.Default()
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded", zap.String("path", path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/server.yaml", "path to the YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
