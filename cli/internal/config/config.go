// Package config loads CLI configuration: flags first, MICROGIT_*
// environment variables underneath, built-in defaults last.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved CLI configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// UserAgent is sent on the wire and declared in the capability list.
	UserAgent string
	// HTTPTimeout bounds each transport request.
	HTTPTimeout time.Duration
	// Retries is the transport attempt budget for ref discovery.
	Retries int
}

// Load resolves configuration from the given flag set and the environment.
// Every flag can also be set as MICROGIT_<FLAG> with dashes as underscores,
// e.g. MICROGIT_LOG_LEVEL=debug.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MICROGIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "warn")
	v.SetDefault("user-agent", "microgit/0")
	v.SetDefault("http-timeout", 5*time.Minute)
	v.SetDefault("retries", 3)

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		LogLevel:    v.GetString("log-level"),
		UserAgent:   v.GetString("user-agent"),
		HTTPTimeout: v.GetDuration("http-timeout"),
		Retries:     v.GetInt("retries"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	return cfg, nil
}
