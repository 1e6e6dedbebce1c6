package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig
	Cache CacheConfig
	UI    UIConfig
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Token       string `mapstructure:"token"`
	TokenEnv    string `mapstructure:"token_env"`
	PollSeconds int    `mapstructure:"poll_seconds"`
}

// CacheConfig holds local sqlite settings.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale     string `mapstructure:"locale"`
	DateFormat string `mapstructure:"date_format"`
	DataDir    string `mapstructure:"data_dir"`
}

// Load reads configuration from file and env. Env var overrides use prefix DOSSIER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://127.0.0.1:8787")
	v.SetDefault("api.token", "")
	v.SetDefault("api.token_env", "DOSSIER_API_TOKEN")
	v.SetDefault("api.poll_seconds", 5)
	v.SetDefault("cache.path", "")
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.date_format", "02/01/2006")
	v.SetDefault("ui.data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "dossier"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("DOSSIER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "dossier"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DOSSIER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the settings view and `dossier config set`. The token is
// stored in plain text; prefer the env var on shared machines.
func Save(cfg Config) error {
	path := os.Getenv("DOSSIER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "dossier", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.token", cfg.API.Token)
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("api.poll_seconds", cfg.API.PollSeconds)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("ui.locale", cfg.UI.Locale)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.data_dir", cfg.UI.DataDir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CachePath returns where the sqlite cache lives: cache.path when set
// explicitly, otherwise cache.db under the data dir.
func (c Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.UI.DataDir, "cache.db")
}

// ResolveToken prefers the environment variable over the config file value.
func ResolveToken(cfg Config) string {
	env := strings.TrimSpace(cfg.API.TokenEnv)
	if env == "" {
		env = "DOSSIER_API_TOKEN"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return strings.TrimSpace(cfg.API.Token)
}
