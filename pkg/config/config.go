// Package config loads the adapter's environment configuration. Values are read once at
// process start; there is no runtime reloading.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	"github.com/vehiclelink/vehicle-adapter/pkg/credentials"
)

// Config holds the environment-sourced settings shared by the server and serverless
// binaries. ProjectID and Table namespace the credential store so deployments can share a
// backend.
type Config struct {
	FleetAPIURL  string `env:"FLEET_API_URL" envDefault:"https://fleet-api.prd.na.vn.cloud.tesla.com"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	ProjectID    string `env:"STORE_PROJECT_ID" envDefault:"vehicle-adapter"`
	Table        string `env:"STORE_TABLE" envDefault:"credentials"`

	StoreFile       string `env:"STORE_FILE" envDefault:"credentials.json"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	KeyringDir      string `env:"KEYRING_DIR" envDefault:".keyring"`
	KeyringPassword string `env:"KEYRING_PASSWORD"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// OpenStore constructs the credential store selected by StoreBackend.
func (c Config) OpenStore() (credentials.Store, error) {
	switch c.StoreBackend {
	case "memory":
		return credentials.NewMemory(), nil
	case "file":
		return credentials.NewFile(c.StoreFile), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
		})
		return credentials.NewRedis(client, c.ProjectID, c.Table), nil
	case "keyring":
		return credentials.OpenFileKeyring(c.KeyringDir, c.KeyringPassword)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}
