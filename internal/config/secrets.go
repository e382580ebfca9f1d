package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Secrets are never stored in the TOML file, only read from the environment.
type Secrets struct {
	RedisPassword    string   `env:"FITTRACK_REDIS_PASS"`
	PostgresPassword string   `env:"FITTRACK_POSTGRES_PASS"`
	SentryDSN        string   `env:"SENTRY_DSN"`
	HoneycombEnabled bool     `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombAPIKey  string   `env:"HONEYCOMB_API_KEY"`
	OtelServiceName  string   `env:"OTEL_SERVICE_NAME, default=fittrack"`
	BootstrapAdmins  []string `env:"FITTRACK_BOOTSTRAP_ADMINS"`
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	return loadSecrets(ctx, envconfig.OsLookuper())
}

func loadSecrets(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}
