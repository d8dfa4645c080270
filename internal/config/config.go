package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogMode    string `env:"LOG_MODE" envDefault:"development"`

	// JWTSecretKey verifies bearer tokens issued by the identity
	// provider.
	JWTSecretKey string `env:"JWT_SECRET_KEY,required"`

	// FirestoreProjectID selects the backing project. The client
	// library honors FIRESTORE_EMULATOR_HOST on its own, so local
	// development only needs that variable exported.
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID,required"`

	// CatalogCacheTTL bounds staleness of the in-memory achievement
	// catalog snapshot.
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
