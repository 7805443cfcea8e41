package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingStore is returned by Validate when the backing store connection
// parameters are not supplied.
var ErrMissingStore = errors.New("backing store connection is not configured")

type Config struct {
	HTTPPort       string
	StoreURL       string // postgres://user@host:5432/db
	StoreAccessKey string
	CORSOrigins    string
	RedisURL       string // optional, enables the change-feed bridge
	LogLevel       string
	LogFormat      string
	LogoutURL      string
	AutoMigrate    bool
}

// Load reads .env (when present) and the process environment. It never fails:
// a missing store connection is reported by Validate so the server can start
// in setup mode instead of exiting.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		StoreURL:       strings.TrimSpace(getEnv("STORE_URL", "")),
		StoreAccessKey: strings.TrimSpace(getEnv("STORE_ACCESS_KEY", "")),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		RedisURL:       getEnv("REDIS_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogoutURL:      getEnv("LOGOUT_URL", "/"),
		AutoMigrate:    getEnv("AUTO_MIGRATE", "true") != "false",
	}
}

// Validate reports which store parameters are missing.
func (c *Config) Validate() error {
	var missing []string
	if c.StoreURL == "" {
		missing = append(missing, "STORE_URL")
	}
	if c.StoreAccessKey == "" {
		missing = append(missing, "STORE_ACCESS_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingStore, strings.Join(missing, " and "))
	}
	if _, err := c.DSN(); err != nil {
		return err
	}
	return nil
}

// DSN combines the store endpoint and access key into a postgres connection
// URL. The access key is used as the database password.
func (c *Config) DSN() (string, error) {
	u, err := url.Parse(c.StoreURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("STORE_URL must be a postgres URL such as postgres://user@host:5432/db")
	}
	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, c.StoreAccessKey)
	if u.Query().Get("sslmode") == "" {
		q := u.Query()
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// StoreHost is the endpoint without credentials, safe to show on screens.
func (c *Config) StoreHost() string {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
