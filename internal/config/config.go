// Package config holds the environment-driven configuration for ckctl.
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the CLI reads from the environment. Flags may
// override individual fields after NewConfig returns.
type Config struct {
	// APIBaseURL is the platform API the cluster client talks to.
	APIBaseURL string `env:"CKCTL_API_BASE_URL" envDefault:"https://api.clusterkit.dev"`
	// APIToken authenticates the user against the platform API.
	APIToken string `env:"CKCTL_API_TOKEN"`
	// LocalEndpoint is probed to decide whether a local server is running.
	LocalEndpoint string `env:"CKCTL_LOCAL_ENDPOINT" envDefault:"http://localhost:4466"`

	// Fixed hosted regions offered by the demo-server branch.
	RegionEU string `env:"CKCTL_REGION_EU" envDefault:"https://eu1.clusterkit.dev"`
	RegionUS string `env:"CKCTL_REGION_US" envDefault:"https://us1.clusterkit.dev"`

	RequestTimeout time.Duration `env:"CKCTL_REQUEST_TIMEOUT" envDefault:"10s"`
	PingTimeout    time.Duration `env:"CKCTL_PING_TIMEOUT" envDefault:"5s"`
}

// Regions maps the fixed hosted region cluster names to their base URLs.
func (c *Config) Regions() map[string]string {
	return map[string]string{
		"prisma-eu1": c.RegionEU,
		"prisma-us1": c.RegionUS,
	}
}

// NewConfig parses the environment into a Config.
func NewConfig() *Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse environment config: %v", err)
	}
	return &cfg
}
