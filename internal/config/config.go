package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL        string `mapstructure:"POSTGRES_URL"`
	ServerPort         string `mapstructure:"SERVER_PORT"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	Headless           bool   `mapstructure:"HEADLESS"`
	ProxyURL           string `mapstructure:"PROXY_URL"`
	WindowWidth        int    `mapstructure:"WINDOW_WIDTH"`
	WindowHeight       int    `mapstructure:"WINDOW_HEIGHT"`
	WaitTimeout        int    `mapstructure:"WAIT_TIMEOUT"`
	PageLoadTimeout    int    `mapstructure:"PAGE_LOAD_TIMEOUT"`
	MaxClickRetries    int    `mapstructure:"MAX_CLICK_RETRIES"`
	FilterSettle       int    `mapstructure:"FILTER_SETTLE"`
	RateLimit          int    `mapstructure:"RATE_LIMIT"`
	CheckpointInterval int    `mapstructure:"CHECKPOINT_INTERVAL"`
	ProgressInterval   int    `mapstructure:"PROGRESS_INTERVAL"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HEADLESS", true)
	viper.SetDefault("PROXY_URL", "")
	viper.SetDefault("WINDOW_WIDTH", 1024)
	viper.SetDefault("WINDOW_HEIGHT", 768)
	viper.SetDefault("WAIT_TIMEOUT", 10)       // in seconds
	viper.SetDefault("PAGE_LOAD_TIMEOUT", 30)  // in seconds
	viper.SetDefault("MAX_CLICK_RETRIES", 3)
	viper.SetDefault("FILTER_SETTLE", 1) // in seconds
	viper.SetDefault("RATE_LIMIT", 1)    // in seconds
	viper.SetDefault("CHECKPOINT_INTERVAL", 50)
	viper.SetDefault("PROGRESS_INTERVAL", 10)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
