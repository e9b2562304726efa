// Package cmd implements the CLI commands for tcx-worker.
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

// workerViper is a separate Viper instance from any controller process
// sharing the same host, so env/config binding never collides.
var workerViper = config.New()

var rootCmd = &cobra.Command{
	Use:     "tcx-worker",
	Short:   "Single-node ffmpeg execution daemon for the transcoder cluster",
	Version: version.Short(),
	Long: `tcx-worker accepts one transcoding task at a time over HTTP, runs it
through ffmpeg, and makes the result available for download. It answers UDP
discovery broadcasts and heartbeats its status so a Controller can find it
without any central registry.

Configuration is primarily via environment variables:
  TC_WORKER_PORT      - HTTP listen port (default 9000)
  TC_WORK_DIR         - directory for uploaded/transcoded files
  TC_FFMPEG_PATH      - ffmpeg binary path (default "ffmpeg")
  TC_DISCOVERY_PORT   - UDP discovery port (default 55557)
  TC_LOG_LEVEL        - log level (debug, info, warn, error)

Example:
  TC_WORK_DIR=/srv/transcode tcx-worker serve --port 9001`,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
	rootCmd.PersistentFlags().String("config", "", "path to a configuration file")
}

// initConfig is a Cobra OnInitialize hook; actual file loading happens in
// runServe via config.Load, once the --config flag value is known.
func initConfig() {}

// initLogging configures the default slog logger from config/env, with CLI
// flags winning when explicitly set (spec §6: "merged with CLI, CLI wins").
func initLogging() error {
	level := workerViper.GetString("logging.level")
	format := workerViper.GetString("logging.format")

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	logCfg := config.LoggingConfig{
		Level:  strings.ToLower(level),
		Format: strings.ToLower(format),
		File:   workerViper.GetString("logging.file"),
	}
	if logCfg.Level == "warning" {
		logCfg.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)
	return nil
}

// GetWorkerViper returns the daemon-specific Viper instance, for use by
// subcommands.
func GetWorkerViper() *viper.Viper {
	return workerViper
}
