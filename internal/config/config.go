// Package config provides configuration management for the transcoder
// cluster, using Viper for layered env/file/default loading.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Default configuration values (spec §6).
const (
	DefaultControlPort       = 55555
	DefaultWorkerPort        = 9000
	DefaultDiscoveryPort     = 55557
	DefaultDiscoveryInterval = 10 * time.Second
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultWorkDir           = "./worker_files"
	DefaultFFmpegPath        = "ffmpeg"
	DefaultFFprobePath       = "ffprobe"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	File   string `mapstructure:"file"`   // empty = stderr only
}

// DiscoveryConfig holds the UDP discovery-fabric configuration (spec §4.1).
type DiscoveryConfig struct {
	Port              int           `mapstructure:"port"`
	DiscoveryInterval time.Duration `mapstructure:"discovery_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// NodeTTL is the node-record lifetime for a discovery Registry. The
	// Controller's discovery helper does not read it: it builds its
	// Registry with a fixed 30s TTL and no on_node_lost callback.
	NodeTTL time.Duration `mapstructure:"node_ttl"`
}

// WorkerConfig holds Worker-process configuration.
type WorkerConfig struct {
	Port         int    `mapstructure:"port"`
	WorkDir      string `mapstructure:"work_dir"`
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	FFprobePath  string `mapstructure:"ffprobe_path"`
	NoDiscovery  bool   `mapstructure:"no_discovery"`
	MetricsAddr  string `mapstructure:"metrics_addr"` // not read; the Worker always serves /metrics on its HTTP port
}

// ControllerConfig holds Controller-process configuration.
type ControllerConfig struct {
	Port int `mapstructure:"port"`
}

// Config holds all configuration for either binary; each reads only the
// sections relevant to it.
type Config struct {
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Controller ControllerConfig `mapstructure:"controller"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// New returns a Viper instance preloaded with defaults and the TC_ env
// prefix (spec §6), without reading any file yet.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("controller.port", DefaultControlPort)
	v.SetDefault("worker.port", DefaultWorkerPort)
	v.SetDefault("worker.work_dir", DefaultWorkDir)
	v.SetDefault("worker.ffmpeg_path", DefaultFFmpegPath)
	v.SetDefault("worker.ffprobe_path", DefaultFFprobePath)
	v.SetDefault("discovery.port", DefaultDiscoveryPort)
	v.SetDefault("discovery.discovery_interval", DefaultDiscoveryInterval)
	v.SetDefault("discovery.heartbeat_interval", DefaultHeartbeatInterval)
	v.SetDefault("discovery.node_ttl", 3*DefaultHeartbeatInterval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// TC_WORK_DIR / TC_FFMPEG_PATH / TC_DISCOVERY_INTERVAL etc. (spec §6,
	// flat env names) bind to the nested keys above.
	_ = v.BindEnv("worker.work_dir", "TC_WORK_DIR")
	_ = v.BindEnv("worker.ffmpeg_path", "TC_FFMPEG_PATH")
	_ = v.BindEnv("worker.port", "TC_WORKER_PORT")
	_ = v.BindEnv("controller.port", "TC_CONTROL_PORT")
	_ = v.BindEnv("discovery.port", "TC_DISCOVERY_PORT")
	_ = v.BindEnv("discovery.discovery_interval", "TC_DISCOVERY_INTERVAL")
	_ = v.BindEnv("discovery.heartbeat_interval", "TC_HEARTBEAT_INTERVAL")
	_ = v.BindEnv("logging.level", "TC_LOG_LEVEL")
	_ = v.BindEnv("logging.file", "TC_LOG_FILE")

	return v
}

// Load reads configuration from an optional file path and unmarshals it
// into a Config. Viper's precedence applies: TC_* env values win over the
// file, which wins over defaults. CLI flags are not bound here; callers
// apply them on top of the returned Config.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// WatchReload installs a file-change watcher that re-unmarshals the
// configuration into a new Config and passes it to onChange whenever the
// config file changes on disk.
// No-op when no config file is set (Viper only watches a bound file).
func WatchReload(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
}
