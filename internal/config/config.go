package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds configuration for the serve command, loaded from flags,
// env, or config file.
type ServeConfig struct {
	ListenAddr   string
	UpstreamURL  string
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	StateDir     string
	PGDSN        string
	MaxSessions  int
	LogLevel     string
}

// LoadServe merges config file, environment variables, and flags into
// ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}

	v.SetDefault("listen", ":8080")
	v.SetDefault("poll-interval", 30*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("state-dir", "./data/state")
	v.SetDefault("max-sessions", 256)
	v.SetDefault("log-level", "info")

	cfg := ServeConfig{
		ListenAddr:   v.GetString("listen"),
		UpstreamURL:  v.GetString("upstream"),
		PollInterval: v.GetDuration("poll-interval"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		StateDir:     v.GetString("state-dir"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxSessions:  v.GetInt("max-sessions"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// newViper builds the merged source stack every command shares: env wins over
// config file, flags win over both.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
