package config

import (
	"os"
	"strings"
)

// LoadLogConfigFromEnv applies LORUNTIME_LOG_* overrides on top of cfg.
func LoadLogConfigFromEnv(cfg LogConfig) LogConfig {
	if level := strings.TrimSpace(os.Getenv("LORUNTIME_LOG_LEVEL")); level != "" {
		cfg.Level = strings.ToLower(level)
	}
	if os.Getenv("LORUNTIME_LOG_TIMESTAMPS") == "0" {
		cfg.Timestamps = false
	}
	return cfg
}
