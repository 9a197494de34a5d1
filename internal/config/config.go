// Package config handles configuration loading for investdash.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "INVESTDASH"

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Auth      AuthConfig      `mapstructure:"auth"      yaml:"auth"`
	Fetch     FetchConfig     `mapstructure:"fetch"     yaml:"fetch"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"  yaml:"upstream"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            int           `mapstructure:"port"             yaml:"port"             validate:"min=1,max=65535"`
	CORSOrigins     []string      `mapstructure:"cors_origins"     yaml:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// AuthConfig holds the shared access secret.
type AuthConfig struct {
	Password string `mapstructure:"password" yaml:"password" validate:"required"`
}

// FetchConfig holds market data fetch settings.
type FetchConfig struct {
	Pacing time.Duration `mapstructure:"pacing" yaml:"pacing" validate:"gte=0"` // wait after each symbol
}

// UpstreamConfig holds the market data provider endpoints.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"   validate:"required,url"`
	CookieURL string        `mapstructure:"cookie_url" yaml:"cookie_url" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"    validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// NewsConfig holds optional headline fetching settings.
type NewsConfig struct {
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"`
	FeedURL string `mapstructure:"feed_url" yaml:"feed_url" validate:"required_if=Enabled true"` // %s is replaced by the symbol
	Limit   int    `mapstructure:"limit"    yaml:"limit"    validate:"gte=0"`
}

// DashboardConfig holds presentation settings.
type DashboardConfig struct {
	Title          string `mapstructure:"title"           yaml:"title"`
	DefaultTickers string `mapstructure:"default_tickers" yaml:"default_tickers"`
	GridColumns    int    `mapstructure:"grid_columns"    yaml:"grid_columns"    validate:"min=1,max=6"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.investdash/config.yaml (home directory)
//  3. /etc/investdash/config.yaml (system)
//
// Environment variables override config file values.
// Format: INVESTDASH_<SECTION>_<KEY>, e.g., INVESTDASH_AUTH_PASSWORD
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".investdash"))
	v.AddConfigPath("/etc/investdash")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute) // an analysis of many symbols is paced
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// Fetch defaults
	v.SetDefault("fetch.pacing", time.Second)

	// Upstream defaults
	v.SetDefault("upstream.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("upstream.cookie_url", "https://fc.yahoo.com")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	// News defaults
	v.SetDefault("news.enabled", false)
	v.SetDefault("news.feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	v.SetDefault("news.limit", 3)

	// Dashboard defaults
	v.SetDefault("dashboard.title", "Investment Research Dashboard")
	v.SetDefault("dashboard.default_tickers", "AAPL, MSFT, GOOGL")
	v.SetDefault("dashboard.grid_columns", 3)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// auth.password has no default, so viper's AutomaticEnv does not see it on Unmarshal.
func overrideFromEnv(cfg *Config) {
	if pw := os.Getenv(EnvPrefix + "_AUTH_PASSWORD"); pw != "" {
		cfg.Auth.Password = pw
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML with the secret masked.
func (c *Config) Marshal() ([]byte, error) {
	red := c.Redacted()
	out, err := yaml.Marshal(&red)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// Redacted returns a copy of the configuration that is safe to display.
func (c *Config) Redacted() Config {
	red := *c
	red.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	red.Auth.Password = maskKey(c.Auth.Password)
	return red
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
