package mcp

import (
	"time"

	"github.com/spf13/viper"

	"github.com/uapibot/uapibot/internal/uapi"
	"github.com/uapibot/uapibot/pkg/sockpath"
)

// Config holds all configuration for the MCP server.
type Config struct {
	NATS     NATSConfig     `mapstructure:"nats"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Uapi     UapiConfig     `mapstructure:"uapi"`
	Security SecurityConfig `mapstructure:"security"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// DaemonConfig holds settings for connecting to the uapibotd daemon API.
type DaemonConfig struct {
	Socket string `mapstructure:"socket"`
}

// UapiConfig holds settings for direct Uapi lookups.
type UapiConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SecurityConfig holds command signing settings.
type SecurityConfig struct {
	CommandSecret string `mapstructure:"command_secret"`
}

// LoadConfig reads the MCP server configuration from file, env vars, and defaults.
func LoadConfig(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("daemon.socket", sockpath.DefaultSocketPath())
	v.SetDefault("uapi.base_url", uapi.DefaultBaseURL)
	v.SetDefault("uapi.timeout", uapi.DefaultTimeout)

	v.SetConfigType("toml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("uapibot-mcp")
		v.AddConfigPath("/etc/uapibot")
		v.AddConfigPath("$HOME/.config/uapibot")
		v.AddConfigPath(".")
	}

	v.BindEnv("nats.url", "UAPIBOT_NATS_URL")
	v.BindEnv("nats.token", "UAPIBOT_NATS_TOKEN")
	v.BindEnv("daemon.socket", "UAPIBOT_DAEMON_SOCKET")
	v.BindEnv("security.command_secret", "UAPIBOT_COMMAND_SECRET")

	_ = v.ReadInConfig() // config file is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
