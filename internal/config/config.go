package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Row-store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Flux"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:*"`
	}

	Local struct {
		Path string `envconfig:"LOCAL_PATH" default:"flux.db"`
	}

	RowStore struct {
		// Driver is empty when the row-store backend is disabled.
		Driver      string `envconfig:"ROWSTORE_DRIVER"`
		Table       string `envconfig:"ROWSTORE_TABLE" default:"transactions"`
		AccessToken string `envconfig:"ROWSTORE_ACCESS_TOKEN"`
		JWTSecret   string `envconfig:"ROWSTORE_JWT_SECRET"`
		OwnerID     string `envconfig:"ROWSTORE_OWNER_ID"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"flux"`
	}

	Mongo struct {
		URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database string `envconfig:"MONGO_DATABASE" default:"flux"`
	}

	Google struct {
		ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
		ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
		RefreshToken string `envconfig:"GOOGLE_REFRESH_TOKEN"`
		Tab          string `envconfig:"GOOGLE_TAB" default:"Transactions"`
		BaseURL      string `envconfig:"SHEETS_BASE_URL" default:"https://sheets.googleapis.com/v4/spreadsheets"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// GoogleEnabled reports whether spreadsheet credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.RefreshToken != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.RowStore.Driver = strings.ToLower(strings.TrimSpace(cfg.RowStore.Driver))

	switch cfg.RowStore.Driver {
	case "", DriverPostgres, DriverMongo:
	default:
		return nil, fmt.Errorf("unknown ROWSTORE_DRIVER %q", cfg.RowStore.Driver)
	}

	return &cfg, nil
}
