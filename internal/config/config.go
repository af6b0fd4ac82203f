package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all sentinel configuration.
type Config struct {
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Ntfy       NtfyConfig       `mapstructure:"ntfy"`
	Nuke       NukeConfig       `mapstructure:"nuke"`
	AWS        AWSConfig        `mapstructure:"aws"`
	Server     ServerConfig     `mapstructure:"server"`
	Resizer    ResizerConfig    `mapstructure:"resizer"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`

	// NotifyWhenNormal sends a low-priority summary even under threshold.
	NotifyWhenNormal bool `mapstructure:"notify_when_normal"`

	// Schedule is the cron expression for periodic evaluation in serve mode.
	Schedule string `mapstructure:"schedule"`
}

// ThresholdsConfig defines the alert and critical spend levels in USD.
type ThresholdsConfig struct {
	Alert    float64 `mapstructure:"alert"`
	Critical float64 `mapstructure:"critical"`
}

// NtfyConfig defines the push-notification target.
type NtfyConfig struct {
	Server string `mapstructure:"server"`
	Topic  string `mapstructure:"topic"`
	Token  string `mapstructure:"token"`
}

// NukeConfig is the safety gate for destructive cleanup. Both defaults are
// the safe ones: disabled, and dry-run even when enabled.
type NukeConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DryRun   bool   `mapstructure:"dry_run"`
	PlanFile string `mapstructure:"plan_file"`
}

// AWSConfig defines cloud client settings.
type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// ResizerConfig defines image-resize settings.
type ResizerConfig struct {
	Bucket      string `mapstructure:"bucket"`
	MaxWidth    int    `mapstructure:"max_width"`
	MaxHeight   int    `mapstructure:"max_height"`
	MaxBodySize int64  `mapstructure:"max_body_size"`
}

// StorageConfig defines the run-history database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".sentinel"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("thresholds.alert", 10.0)
	v.SetDefault("thresholds.critical", 50.0)
	v.SetDefault("ntfy.server", "https://ntfy.sh")
	v.SetDefault("ntfy.topic", "aws-cost-alerts")
	v.SetDefault("ntfy.token", "")
	v.SetDefault("nuke.enabled", false)
	v.SetDefault("nuke.dry_run", true)
	v.SetDefault("notify_when_normal", false)
	v.SetDefault("schedule", "0 * * * *")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("resizer.max_width", 800)
	v.SetDefault("resizer.max_height", 600)
	v.SetDefault("resizer.max_body_size", 10*1024*1024) // 10 MB
	v.SetDefault("storage.path", filepath.Join(home, ".sentinel", "history.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
