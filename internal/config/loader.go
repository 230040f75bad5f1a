package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml plus ENSURAX_*
// environment variables. A missing config file is fine; the defaults plus
// environment are enough to run against a local backend.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, "ensurax"))
	}

	v.SetEnvPrefix("ENSURAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 45*time.Second)
	v.SetDefault("api.health_poll_interval", 30*time.Second)
	v.SetDefault("ui.theme", "light")
	v.SetDefault("chat.mock", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	if explicitPath = strings.TrimSpace(explicitPath); explicitPath != "" {
		v.SetConfigFile(explicitPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || explicitPath != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.UI.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		cfg.UI.StateDir = filepath.Join(base, "ensurax")
	}
	return &cfg, nil
}
