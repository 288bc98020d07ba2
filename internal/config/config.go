// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The DB fields are only required when the store
// lives in MySQL.
type Config struct {
	Env          string // application environment (dev, test, prod)
	Port         string // HTTP port to listen on
	StoreBackend string // mysql, redis or memory
	PropertyID   string // key of the stored configuration
	DBUser       string
	DBPass       string // may be empty
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string // secret used to sign operator tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for operator passwords
	RabbitURL    string // empty disables change notifications
	LogLevel     string // overrides the environment's default level
	CalendarDays int    // days in a freshly created calendar
}

// Load reads configuration values from environment variables.  Missing
// required values stop the program with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		StoreBackend: strings.ToLower(envStr("STORE_BACKEND", BackendMySQL)),
		PropertyID:   envStr("PROPERTY_ID", "default"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		CalendarDays: envInt("CALENDAR_DAYS", 7),
	}
	switch cfg.StoreBackend {
	case BackendMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case BackendRedis, BackendMemory:
	default:
		log.Fatalf("invalid STORE_BACKEND: %q", cfg.StoreBackend)
	}
	if cfg.AccessTTLMin < 1 {
		log.Fatalf("ACCESS_TOKEN_TTL_MIN must be positive, got %d", cfg.AccessTTLMin)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
