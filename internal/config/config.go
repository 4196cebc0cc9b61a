// Package config loads the client configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the pipeline client.
type Config struct {
	Server struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"server"`
	Auth struct {
		Enable       bool   `mapstructure:"enable"`
		TokenURL     string `mapstructure:"token_url"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"auth"`
	Fetch struct {
		BaseDelay   time.Duration `mapstructure:"base_delay"`
		Growth      float64       `mapstructure:"growth"`
		MaxDelay    time.Duration `mapstructure:"max_delay"`
		MaxAttempts int           `mapstructure:"max_attempts"`
	} `mapstructure:"fetch"`
	Stream struct {
		ReconnectBase time.Duration `mapstructure:"reconnect_base"`
		ReconnectMax  time.Duration `mapstructure:"reconnect_max"`
		MaxAttempts   int           `mapstructure:"max_attempts"`
	} `mapstructure:"stream"`
	Trail struct {
		Capacity int `mapstructure:"capacity"`
	} `mapstructure:"trail"`
	Undo struct {
		Depth int `mapstructure:"depth"`
	} `mapstructure:"undo"`
	Suggest struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"suggest"`
	Storage struct {
		DescriptionPath  string        `mapstructure:"description_path"`
		AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	} `mapstructure:"storage"`
	MCP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"mcp"`
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig loads the configuration from a file and the environment.
// If path is non-empty it names an explicit config file; otherwise
// config.yaml is searched in the working directory and ./config. A
// missing file is not an error, defaults and environment variables
// still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("NL2DATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Server.URL = strings.TrimRight(strings.TrimSpace(config.Server.URL), "/")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("fetch.base_delay", 500*time.Millisecond)
	v.SetDefault("fetch.growth", 2.0)
	v.SetDefault("fetch.max_delay", 8*time.Second)
	v.SetDefault("fetch.max_attempts", 20)
	v.SetDefault("stream.reconnect_base", time.Second)
	v.SetDefault("stream.reconnect_max", 15*time.Second)
	v.SetDefault("stream.max_attempts", 5)
	v.SetDefault("trail.capacity", 300)
	v.SetDefault("undo.depth", 5)
	v.SetDefault("suggest.interval", 5*time.Second)
	v.SetDefault("storage.description_path", defaultDescriptionPath())
	v.SetDefault("storage.autosave_interval", 3*time.Second)
	v.SetDefault("mcp.addr", ":8089")
	v.SetDefault("log_level", "info")
}

// defaultDescriptionPath places the description autosave file under the
// user config directory, falling back to the working directory when it
// cannot be determined.
func defaultDescriptionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".nl2data-description.json"
	}
	return filepath.Join(dir, "nl2data", "description.json")
}
