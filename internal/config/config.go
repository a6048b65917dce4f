// Package config loads the suite configuration: a TOML file under the
// user config dir, EASEL_-prefixed env overrides, and an optional JSON
// overlay supplied by the controller at spawn time.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	UI      UIConfig      `mapstructure:"ui"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Clock   ClockConfig   `mapstructure:"clock"`
	Files   FilesConfig   `mapstructure:"files"`
	Sysmon  SysmonConfig  `mapstructure:"sysmon"`
	Docker  DockerConfig  `mapstructure:"docker"`
	Passgen PassgenConfig `mapstructure:"passgen"`
	Host    HostConfig    `mapstructure:"host"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Accent string `mapstructure:"accent"`
}

type TimerConfig struct {
	Default string `mapstructure:"default"`
}

type ClockConfig struct {
	Zones []string `mapstructure:"zones"`
}

type FilesConfig struct {
	ShowHidden bool `mapstructure:"show_hidden"`
}

// SysmonConfig sets poll cadence and alert thresholds as 0..1 ratios.
type SysmonConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LoadWarn     float64       `mapstructure:"load_warn"`
	MemWarn      float64       `mapstructure:"mem_warn"`
	DiskWarn     float64       `mapstructure:"disk_warn"`
}

// DockerConfig drives the container canvas. CPUThreshold is a percent;
// Consecutive is how many polls must breach before the alert fires.
type DockerConfig struct {
	Binary       string        `mapstructure:"binary"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	CPUThreshold float64       `mapstructure:"cpu_threshold"`
	Consecutive  int           `mapstructure:"consecutive"`
}

type PassgenConfig struct {
	Length int `mapstructure:"length"`
	Count  int `mapstructure:"count"`
}

// HostConfig configures the reference controller.
type HostConfig struct {
	SocketDir   string        `mapstructure:"socket_dir"`
	JournalPath string        `mapstructure:"journal_path"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.accent", "")
	v.SetDefault("timer.default", "5m")
	v.SetDefault("clock.zones", []string{"Local", "UTC", "America/New_York", "Asia/Tokyo"})
	v.SetDefault("files.show_hidden", false)
	v.SetDefault("sysmon.poll_interval", "2s")
	v.SetDefault("sysmon.load_warn", 0.85)
	v.SetDefault("sysmon.mem_warn", 0.90)
	v.SetDefault("sysmon.disk_warn", 0.90)
	v.SetDefault("docker.binary", "docker")
	v.SetDefault("docker.poll_interval", "5s")
	v.SetDefault("docker.cpu_threshold", 85.0)
	v.SetDefault("docker.consecutive", 2)
	v.SetDefault("passgen.length", 24)
	v.SetDefault("passgen.count", 8)
	v.SetDefault("host.socket_dir", "")
	v.SetDefault("host.journal_path", "")
	v.SetDefault("host.grace_period", "3s")
}

// Default returns the built-in configuration, no file or env involved.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from file and env. Env overrides use prefix
// EASEL_, with dots replaced by underscores.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EASEL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "easel"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EASEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// MergeJSON overlays a controller-supplied JSON object onto c. Keys
// mirror the TOML layout; absent keys leave the loaded values alone.
func (c *Config) MergeJSON(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("parse canvas config: %w", err)
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("merge canvas config: %w", err)
	}
	return nil
}
