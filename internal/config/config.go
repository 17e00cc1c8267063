// Package config loads wealthadvisor configuration from YAML files, a .env
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WEALTHADVISOR_LLM_MODEL.
const EnvPrefix = "WEALTHADVISOR"

// GoogleAPIKeyEnv is the conventional Gemini key variable, used when no
// prefixed key is configured.
const GoogleAPIKeyEnv = "GOOGLE_API_KEY"

// Config represents the complete application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"`
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig holds generative model settings.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // only "gemini" today
	GeminiKey   string  `mapstructure:"gemini_key"  yaml:"gemini_key"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the per-request generation timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// MarketConfig holds price history settings.
type MarketConfig struct {
	Exchange   string `mapstructure:"exchange"    yaml:"exchange"` // "NSE" or "BSE"
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the per-request market data timeout.
func (c MarketConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// NewsConfig controls headline context in insights prompts.
type NewsConfig struct {
	Enabled bool         `mapstructure:"enabled" yaml:"enabled"`
	Limit   int          `mapstructure:"limit"   yaml:"limit"`
	Feeds   []FeedConfig `mapstructure:"feeds"   yaml:"feeds"` // empty means the built-in feeds
}

// FeedConfig names one RSS feed.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.wealthadvisor/config.yaml (home directory)
//  3. /etc/wealthadvisor/config.yaml (system)
//
// A .env file in the working directory is loaded first; it never replaces
// variables already set in the process environment.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wealthadvisor"))
	v.AddConfigPath("/etc/wealthadvisor")

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads path into the process environment when it exists.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout_sec", 60)

	// Market data
	v.SetDefault("market.exchange", "NSE")
	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("market.timeout_sec", 30)

	// News is opt-in so default prompts stay data-only.
	v.SetDefault("news.enabled", false)
	v.SetDefault("news.limit", 5)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The prefixed key wins; GOOGLE_API_KEY only fills an empty key.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_LLM_GEMINI_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
		return
	}
	if cfg.LLM.GeminiKey == "" {
		cfg.LLM.GeminiKey = os.Getenv(GoogleAPIKeyEnv)
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if p := strings.ToLower(c.LLM.Provider); p != "gemini" {
		errs = append(errs, fmt.Errorf("llm.provider: unsupported provider %q", c.LLM.Provider))
	}
	switch strings.ToUpper(c.Market.Exchange) {
	case "", "NSE", "BSE":
	default:
		errs = append(errs, fmt.Errorf("market.exchange: want NSE or BSE, got %q", c.Market.Exchange))
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port: out of range: %d", c.API.Port))
	}
	if c.News.Limit < 0 {
		errs = append(errs, fmt.Errorf("news.limit: must not be negative"))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: want text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
