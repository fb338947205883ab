package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the gateway's environment configuration.
type Config struct {
	Issuer         string `env:"SESSION_ISSUER" envDefault:"fixplan-session"`
	BootstrapToken string `env:"BOOTSTRAP_TOKEN"` // empty disables the bootstrap endpoint

	DatabaseFile string `env:"SESSION_DATABASE_FILE" envDefault:"session.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
