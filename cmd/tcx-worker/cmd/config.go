package cmd

import (
	"github.com/spf13/viper"

	"github.com/ybyllc/transcoder-cluster/internal/config"
)

// loadWorkerConfig reads the --config file at configPath, if any, into v
// (already seeded with defaults/env) and unmarshals the result into a
// Config.
func loadWorkerConfig(v *viper.Viper, configPath string) (*config.Config, error) {
	return config.Load(v, configPath)
}
