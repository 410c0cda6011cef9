package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	SQLite       SQLiteConfig
	Logger       LoggerConfig
	Session      SessionConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	StaticDir             string
	CORSOrigins           string
	MaxUploadBytes        int
	Timezone              string
}

// StoreConfig selects where session documents live.
type StoreConfig struct {
	Driver         string
	DocumentTTLMin int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig defines how browser sessions are tracked.
type SessionConfig struct {
	JWTSecret    string
	TTLMinutes   int
	CookieName   string
	SecureCookie bool
}

// NotificationConfig holds the MQTT fan-out settings. An empty broker disables it.
type NotificationConfig struct {
	MQTTBroker   string
	MQTTClientID string
	TopicPrefix  string
	QueueSize    int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-metrics"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "2222"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			StaticDir:             getEnv("APP_STATIC_DIR", "./frontend"),
			CORSOrigins:           getEnv("APP_CORS_ORIGINS", "*"),
			MaxUploadBytes:        getEnvAsInt("APP_MAX_UPLOAD_BYTES", 20<<20),
			Timezone:              getEnv("APP_TIMEZONE", "UTC"),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMemory)),
			DocumentTTLMin: getEnvAsInt("STORE_DOCUMENT_TTL_MINUTES", 240),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "ticket-metrics"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "./data/ticket-metrics.db"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			JWTSecret:    getEnv("SESSION_JWT_SECRET", "dev-secret"),
			TTLMinutes:   getEnvAsInt("SESSION_TTL_MINUTES", 240),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "ticket_session"),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
		},
		Notification: NotificationConfig{
			MQTTBroker:   os.Getenv("MQTT_BROKER"),
			MQTTClientID: getEnv("MQTT_CLIENT_ID", "ticket-metrics"),
			TopicPrefix:  getEnv("MQTT_TOPIC_PREFIX", "ticket-metrics"),
			QueueSize:    getEnvAsInt("NOTIFY_QUEUE_SIZE", 64),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCLI reads only the settings the offline report command uses. Store and
// server settings are not read or validated; the caller validates the timezone.
func LoadCLI() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "ticket-metrics"),
			Timezone: getEnv("APP_TIMEZONE", "UTC"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverRedis, StoreDriverSQLite:
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DocumentTTL returns how long an uploaded document is kept.
func (s StoreConfig) DocumentTTL() time.Duration {
	if s.DocumentTTLMin <= 0 {
		return 0
	}
	return time.Duration(s.DocumentTTLMin) * time.Minute
}

// TTL returns the session token lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
