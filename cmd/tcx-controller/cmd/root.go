// Package cmd implements the CLI commands for tcx-controller.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ybyllc/transcoder-cluster/internal/config"
	"github.com/ybyllc/transcoder-cluster/internal/observability"
	"github.com/ybyllc/transcoder-cluster/internal/version"
)

var controllerViper = config.New()

var rootCmd = &cobra.Command{
	Use:     "tcx-controller",
	Short:   "Batch scheduler for the transcoder cluster",
	Version: version.Short(),
	Long: `tcx-controller finds Worker nodes on the LAN (via UDP discovery broadcast,
falling back to a subnet scan) and dispatches transcoding tasks to them.

Examples:
  # Discover Worker nodes
  tcx-controller scan

  # Submit a task using a named preset
  tcx-controller run --input video.mp4 --output out.mp4 --preset 1080p_h265_standard

  # Submit a task with raw ffmpeg args
  tcx-controller run --input video.mp4 --args "-c:v libx265 -crf 28"

  # List available presets
  tcx-controller list-presets

  # Review past task outcomes
  tcx-controller audit list`,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a configuration file")
	rootCmd.PersistentFlags().String("history-db", "controller_history.db", "path to the task history database")
}

func initLogging() error {
	level := controllerViper.GetString("logging.level")
	format := controllerViper.GetString("logging.format")

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	logCfg := config.LoggingConfig{
		Level:  strings.ToLower(level),
		Format: strings.ToLower(format),
		File:   controllerViper.GetString("logging.file"),
	}
	if logCfg.Level == "warning" {
		logCfg.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)
	return nil
}

// GetControllerViper returns the daemon-specific Viper instance.
func GetControllerViper() *viper.Viper {
	return controllerViper
}

// loadConfig reads the --config flag (if set on cmd or one of its parents)
// and unmarshals the merged env/file/default configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return config.Load(controllerViper, configPath)
}

// historyDBPath returns the --history-db flag value from cmd or its parents.
func historyDBPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("history-db")
	if path == "" {
		path = "controller_history.db"
	}
	return path
}
