package config

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config is the application configuration loaded from a TOML file.
type Config struct {
	Tidal     TidalConfig     `toml:"tidal"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Discovery DiscoveryConfig `toml:"discovery"`
}

// TidalConfig contains Tidal OAuth credentials and endpoints.
type TidalConfig struct {
	ClientID           string `toml:"client_id"`
	ClientSecret       string `toml:"client_secret"`
	AuthBaseURL        string `toml:"auth_base_url"`
	APIBaseURL         string `toml:"api_base_url"`
	Scopes             string `toml:"scopes"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

// AnthropicConfig contains the Anthropic API credentials and model choice.
type AnthropicConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// DatabaseConfig contains the session database location.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DiscoveryConfig tunes the candidate fan-out and the overall run deadline.
type DiscoveryConfig struct {
	FanoutWorkers  int     `toml:"fanout_workers"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Load reads and parses a TOML configuration file, then applies environment
// overrides for secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// Default returns a Config built from the embedded example, with environment
// overrides applied. Used when no config file exists on disk.
func Default() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TIDAL_CLIENT_ID"); v != "" {
		c.Tidal.ClientID = v
	}
	if v := os.Getenv("TIDAL_CLIENT_SECRET"); v != "" {
		c.Tidal.ClientSecret = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
}

// Addr returns the host:port the HTTP server should listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// HTTPTimeout returns the Tidal HTTP client timeout.
func (c *TidalConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Timeout returns the overall discovery run deadline, 0 when disabled.
func (c *DiscoveryConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
