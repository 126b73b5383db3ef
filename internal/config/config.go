package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	GMaps   GMapsConfig   `yaml:"gmaps" mapstructure:"gmaps"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GMapsConfig holds Google Maps API credentials. An empty key switches
// acquisition to the browser-automation fallback.
type GMapsConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// SearchConfig configures acquisition behavior.
type SearchConfig struct {
	DelaySecs      int    `yaml:"delay_secs" mapstructure:"delay_secs"`
	DefaultRadiusM int    `yaml:"default_radius_m" mapstructure:"default_radius_m"`
	MaxResults     int    `yaml:"max_results" mapstructure:"max_results"`
	DefaultRegion  string `yaml:"default_region" mapstructure:"default_region"`
}

// BrowserConfig configures the chromedp fallback path.
type BrowserConfig struct {
	Headless   bool   `yaml:"headless" mapstructure:"headless"`
	ChromePath string `yaml:"chrome_path" mapstructure:"chrome_path"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// Optional .env in the working directory, same as the dashboard tooling.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys default to empty so env-only overrides bind.
	v.SetDefault("gmaps.api_key", "")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("search.delay_secs", 2)
	v.SetDefault("search.default_radius_m", 10000)
	v.SetDefault("search.max_results", 50)
	v.SetDefault("search.default_region", "São Paulo, SP, Brasil")
	v.SetDefault("browser.headless", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
