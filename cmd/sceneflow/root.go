package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sceneflow/internal/cli"
	"github.com/aretw0/sceneflow/internal/logging"
	"github.com/aretw0/sceneflow/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sceneflow",
	Short: "sceneflow orchestrates gated scene transitions",
	Long: `sceneflow loads scenes in the background behind a loading screen and only
activates them once the load and a minimum display time have finished and the
activation trigger fires. The bundled host is a simulated scene runtime.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "sceneflow.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
}

// loadConfig reads the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", cfg.LogLevel)
	}
	return logging.New(level)
}

// newRuntime loads the configuration and builds the runtime for a command.
func newRuntime(cmd *cobra.Command) (*cli.Runtime, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	rt, err := cli.NewRuntime(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return rt, logger, nil
}
