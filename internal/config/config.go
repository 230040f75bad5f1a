package config

import "time"

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	UI      UIConfig      `mapstructure:"ui"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	HealthPollInterval time.Duration `mapstructure:"health_poll_interval"`
}

type UIConfig struct {
	Theme    string `mapstructure:"theme"`
	StateDir string `mapstructure:"state_dir"`
}

type ChatConfig struct {
	Mock bool `mapstructure:"mock"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}
