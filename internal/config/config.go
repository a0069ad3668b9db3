// Package config loads tipsplit settings from defaults, an optional
// .tipsplit.yaml file, TIPSPLIT_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/mmynk/tipsplit/internal/calculator"
)

// Keys understood by Load.
const (
	KeyAddr        = "addr"
	KeyDBPath      = "db_path"
	KeyRedisAddr   = "redis_addr"
	KeySessionTTL  = "session_ttl"
	KeyTokenSecret = "token_secret"
	KeyRules       = "rules"
	KeyLogLevel    = "log_level"
)

// ErrMissingSecret is returned when the server has no token secret.
var ErrMissingSecret = errors.New("token_secret must be set")

// Config holds resolved settings.
type Config struct {
	Addr        string
	DBPath      string
	RedisAddr   string
	SessionTTL  time.Duration
	TokenSecret string
	Rules       calculator.Rules
	LogLevel    string
}

// New returns a viper instance with tipsplit defaults and sources set up.
// Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyDBPath, "~/.tipsplit/splits.db")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeySessionTTL, 30*time.Minute)
	v.SetDefault(KeyTokenSecret, "")
	v.SetDefault(KeyRules, calculator.LenientRules.Name)
	v.SetDefault(KeyLogLevel, "info")

	v.SetConfigName(".tipsplit") // .yaml is implicit
	v.SetEnvPrefix("TIPSPLIT")
	v.AutomaticEnv()

	if override := os.Getenv("TIPSPLIT_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	return v
}

// Load reads the config file if one exists and resolves every setting.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	dbPath, err := homedir.Expand(v.GetString(KeyDBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", KeyDBPath, err)
	}

	rules, err := calculator.RulesByName(v.GetString(KeyRules))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyRules, err)
	}

	ttl := v.GetDuration(KeySessionTTL)
	if ttl <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeySessionTTL, ttl)
	}

	return &Config{
		Addr:        v.GetString(KeyAddr),
		DBPath:      dbPath,
		RedisAddr:   v.GetString(KeyRedisAddr),
		SessionTTL:  ttl,
		TokenSecret: v.GetString(KeyTokenSecret),
		Rules:       rules,
		LogLevel:    v.GetString(KeyLogLevel),
	}, nil
}

// Validate checks the settings the server needs beyond what Load resolves.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return ErrMissingSecret
	}
	return nil
}
