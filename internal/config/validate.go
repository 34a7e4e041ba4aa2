package config

import (
	"fmt"
	"strings"
)

// Validate performs runtime validations on the loaded configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	for name, u := range map[string]string{
		"api base URL":   cfg.APIBaseURL,
		"local endpoint": cfg.LocalEndpoint,
		"EU region":      cfg.RegionEU,
		"US region":      cfg.RegionUS,
	} {
		if u == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("%s must start with http:// or https:// (got %q)", name, u)
		}
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive (got %s)", cfg.RequestTimeout)
	}
	if cfg.PingTimeout <= 0 {
		return fmt.Errorf("ping timeout must be positive (got %s)", cfg.PingTimeout)
	}
	return nil
}
