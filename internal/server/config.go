package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/uapibot/uapibot/internal/secrets"
	"github.com/uapibot/uapibot/internal/slack"
	"github.com/uapibot/uapibot/internal/uapi"
	"github.com/uapibot/uapibot/pkg/sockpath"
)

// Config is the top-level daemon configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Slack    slack.Config   `mapstructure:"slack"`
	Uapi     UapiConfig     `mapstructure:"uapi"`
	Log      LogConfig      `mapstructure:"log"`
	Security SecurityConfig `mapstructure:"security"`

	// ConfigFileUsed is the resolved config file path, if any. The daemon
	// watches it for log-level changes.
	ConfigFileUsed string `mapstructure:"-"`
}

// ServerConfig holds control socket settings.
type ServerConfig struct {
	Socket string `mapstructure:"socket"`
}

// NATSConfig holds embedded NATS settings. With an empty host the server
// accepts in-process connections only.
type NATSConfig struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Token string `mapstructure:"token"`
}

// UapiConfig holds the lookup API endpoint settings.
type UapiConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SecurityConfig holds application-level security settings.
type SecurityConfig struct {
	CommandSecret string `mapstructure:"command_secret"`
}

// LoadConfig reads configuration from file, env vars, and defaults.
func LoadConfig(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.socket", sockpath.DefaultSocketPath())
	v.SetDefault("uapi.base_url", uapi.DefaultBaseURL)
	v.SetDefault("uapi.timeout", uapi.DefaultTimeout)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("uapibot")
		v.AddConfigPath("/etc/uapibot")
		v.AddConfigPath("$HOME/.config/uapibot")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("UAPIBOT")
	v.AutomaticEnv()

	v.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	v.BindEnv("slack.app_token", "SLACK_APP_TOKEN")
	v.BindEnv("nats.token", "UAPIBOT_NATS_TOKEN")
	v.BindEnv("security.command_secret", "UAPIBOT_COMMAND_SECRET")

	// Config file is optional.
	_ = v.ReadInConfig()

	// Decrypt any ENC[...] values in config.
	identities, err := secrets.ResolveIdentity(v)
	if err != nil {
		return Config{}, fmt.Errorf("resolve encryption identity: %w", err)
	}
	if identities != nil {
		if err := secrets.DecryptViperConfig(v, identities); err != nil {
			return Config{}, fmt.Errorf("decrypt config: %w", err)
		}
	} else if secrets.HasEncryptedValues(v) {
		return Config{}, fmt.Errorf("config contains encrypted values but no age identity is configured; set UAPIBOT_AGE_KEY, UAPIBOT_AGE_KEY_FILE, or secrets.identity")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigFileUsed = v.ConfigFileUsed()
	return cfg, nil
}
