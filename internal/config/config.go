package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is the application version, reported by the version command
// and embedded in the default User-Agent.
const Version = "0.5.0"

// Config holds all application configuration
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Servers  []ServerConfig `mapstructure:"servers"`
	Network  NetworkConfig  `mapstructure:"network"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// DefaultsConfig holds the user's default search and save settings
type DefaultsConfig struct {
	DestinationDirectory string `mapstructure:"destination_directory"`
	MaxResults           int    `mapstructure:"max_results"`
}

// ServerConfig describes one Newznab indexer. Servers are declared as an
// ordered list; the first entry is the default when no -s flag is given.
type ServerConfig struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	APIKey   string `mapstructure:"api_key"`
	PageSize int    `mapstructure:"page_size"`
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// CacheConfig holds search result cache settings
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "getnzbs")
}

// GetDBPath returns the database file path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "getnzbs.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Init initializes the configuration
func Init(cfgFile string) error {
	viper.SetDefault("defaults.destination_directory", "~/Downloads/nzbs")
	viper.SetDefault("defaults.max_results", 300)
	viper.SetDefault("network.timeout", 30*time.Second)
	viper.SetDefault("network.retry_attempts", 3)
	viper.SetDefault("network.retry_base_delay", time.Second)
	viper.SetDefault("network.retry_max_delay", 30*time.Second)
	viper.SetDefault("network.retry_multiplier", 2.0)
	viper.SetDefault("network.user_agent", "getnzbs/"+Version)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", 15*time.Minute)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	viper.SetEnvPrefix("GETNZBS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Drop the cached value so repeated Init calls re-read the file
	cfg = nil

	// A file missing from the search path is fine, the defaults apply.
	// An explicitly named file must exist, and a malformed file is
	// always an error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		viper.Unmarshal(cfg)
		cfg.Defaults.DestinationDirectory = expandPath(cfg.Defaults.DestinationDirectory)
	}
	return cfg
}

// Validate checks that the configuration is usable for querying.
// It fails when no servers are declared, a server has no name or URL,
// or two servers share a name.
func Validate() error {
	c := Get()
	if len(c.Servers) == 0 {
		return fmt.Errorf("no servers configured in %s", GetConfigPath())
	}

	seen := make(map[string]bool, len(c.Servers))
	for _, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("server with URL %q has no name", s.URL)
		}
		if s.URL == "" {
			return fmt.Errorf("server %q has no URL", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate server name: %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// ServerByName returns the server with the given name.
// An empty name selects the first declared server.
func ServerByName(name string) (*ServerConfig, error) {
	c := Get()
	if len(c.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}
	if name == "" {
		return &c.Servers[0], nil
	}
	for i := range c.Servers {
		if c.Servers[i].Name == name {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("unknown server: %s", name)
}

// Set sets a configuration value
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
