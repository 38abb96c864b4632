package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Env    string       `mapstructure:"env"`
	API    APIConfig    `mapstructure:"api"`
	Search SearchConfig `mapstructure:"search"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
	Vault  VaultConfig  `mapstructure:"vault"`
}

// APIConfig holds tokenization service settings.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Burst       int           `mapstructure:"burst"`
	FieldNaming string        `mapstructure:"field_naming"`
}

// SearchConfig selects the search screen variant.
type SearchConfig struct {
	IDLookup bool `mapstructure:"id_lookup"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ToastDuration   time.Duration `mapstructure:"toast_duration"`
	SuccessDuration time.Duration `mapstructure:"success_duration"`
}

// LogConfig controls the client log file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// VaultConfig holds settings of the local development vault.
type VaultConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Token  string `mapstructure:"token"`
}

// Load reads configuration from file and env. Env var overrides use prefix TOKENSHIELD_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TOKENSHIELD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tokenshield"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TOKENSHIELD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("env", "local")
	v.SetDefault("api.base_url", "http://localhost:8070/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.burst", 5)
	v.SetDefault("api.field_naming", "customer")
	v.SetDefault("search.id_lookup", true)
	v.SetDefault("ui.toast_duration", 5*time.Second)
	v.SetDefault("ui.success_duration", 3*time.Second)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "tokenshield", "tokenshield.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("vault.addr", ":8070")
	v.SetDefault("vault.db_path", filepath.Join(home, ".local", "share", "tokenshield", "vault.db"))
	v.SetDefault("vault.token", "")
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.API.FieldNaming)) {
	case "customer", "detokenize":
	default:
		return fmt.Errorf("api.field_naming must be customer or detokenize, got %q", c.API.FieldNaming)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("TOKENSHIELD_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "tokenshield", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("env", cfg.Env)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.rate_limit", cfg.API.RateLimit)
	v.Set("api.burst", cfg.API.Burst)
	v.Set("api.field_naming", cfg.API.FieldNaming)
	v.Set("search.id_lookup", cfg.Search.IDLookup)
	v.Set("ui.toast_duration", cfg.UI.ToastDuration.String())
	v.Set("ui.success_duration", cfg.UI.SuccessDuration.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("vault.addr", cfg.Vault.Addr)
	v.Set("vault.db_path", cfg.Vault.DBPath)
	v.Set("vault.token", cfg.Vault.Token)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
