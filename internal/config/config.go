// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Browser() BrowserConfig
	Store() StoreConfig
	Server() ServerConfig
	Suggest() SuggestConfig

	SetEngineDebugPacing(bool)
	SetBrowserHeadless(bool)
	SetServerAddr(string)
}

// Config holds the entire application configuration. Fields stay exported so
// viper can unmarshal into them; callers go through the getters.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	EngineCfg  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	StoreCfg   StoreConfig   `mapstructure:"store" yaml:"store"`
	ServerCfg  ServerConfig  `mapstructure:"server" yaml:"server"`
	SuggestCfg SuggestConfig `mapstructure:"suggest" yaml:"suggest"`
}

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig   { return c.EngineCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Store() StoreConfig     { return c.StoreCfg }
func (c *Config) Server() ServerConfig   { return c.ServerCfg }
func (c *Config) Suggest() SuggestConfig { return c.SuggestCfg }

func (c *Config) SetEngineDebugPacing(b bool) { c.EngineCfg.DebugPacing = b }
func (c *Config) SetBrowserHeadless(b bool)   { c.BrowserCfg.Headless = b }
func (c *Config) SetServerAddr(addr string)   { c.ServerCfg.Addr = addr }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig tunes the selector engine.
type EngineConfig struct {
	// PolicyFile optionally overrides the analyzer's heuristic tables.
	PolicyFile string `mapstructure:"policy_file" yaml:"policy_file"`
	// DebugPacing inserts cooperative delays between resolution phases so
	// debug overlays can follow along. Never required for correctness.
	DebugPacing bool `mapstructure:"debug_pacing" yaml:"debug_pacing"`
	// DebugPacingInterval is the delay between paced phases.
	DebugPacingInterval time.Duration `mapstructure:"debug_pacing_interval" yaml:"debug_pacing_interval"`
}

// BrowserConfig holds settings for the live-browser action executor.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// StoreConfig holds the tool store connection details.
type StoreConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ServerConfig tunes the invocation service.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// SuggestConfig configures the optional AI suggestion client.
type SuggestConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
	// APIKey is bound from the environment, never the config file.
	APIKey string `mapstructure:"api_key" yaml:"-"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "beacon-cli")
	v.SetDefault("logger.log_file", defaultLogPath())
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Engine --
	v.SetDefault("engine.policy_file", "")
	v.SetDefault("engine.debug_pacing", false)
	v.SetDefault("engine.debug_pacing_interval", "250ms")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.wait_timeout", "10s")
	v.SetDefault("browser.navigation_timeout", "30s")

	// -- Server --
	v.SetDefault("server.addr", "127.0.0.1:8931")
	v.SetDefault("server.shutdown_timeout", "10s")

	// -- Suggest --
	v.SetDefault("suggest.enabled", false)
	v.SetDefault("suggest.model", "gemini-2.5-flash")
}

// defaultLogPath places the log file under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func defaultLogPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "beacon.log"
	}
	return filepath.Join(home, ".beacon", "beacon.log")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Sensitive data comes from the environment only.
	v.BindEnv("suggest.api_key", "BEACON_SUGGEST_API_KEY")
	v.BindEnv("store.url", "BEACON_STORE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.EngineCfg.DebugPacingInterval < 0 {
		return fmt.Errorf("engine.debug_pacing_interval must not be negative")
	}
	if c.BrowserCfg.WaitTimeout <= 0 {
		return fmt.Errorf("browser.wait_timeout must be a positive duration")
	}
	if c.ServerCfg.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.SuggestCfg.Enabled && c.SuggestCfg.APIKey == "" {
		return fmt.Errorf("suggest is enabled but BEACON_SUGGEST_API_KEY is not set")
	}
	return nil
}
