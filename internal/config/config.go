package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Geo          GeoConfig
	SLA          SLAConfig
	Tickets      TicketConfig
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
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory ticket store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// GeoConfig configures ward resolution.
type GeoConfig struct {
	ResolutionRadiusKm float64
	WardsFile          string
}

// SLAConfig configures the deadline policy and the overdue monitor.
type SLAConfig struct {
	DefaultDueHours int
	PolicyFile      string
	MonitorSchedule string
}

// TicketConfig holds lifecycle policy switches.
type TicketConfig struct {
	IDPrefix                   string
	AllowPostResolutionRemarks bool
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where
// possible. envFiles are loaded first when present; a missing .env is ignored.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	radius, err := strconv.ParseFloat(getEnv("GEO_RESOLUTION_RADIUS_KM", "5"), 64)
	if err != nil || radius <= 0 {
		return nil, fmt.Errorf("invalid GEO_RESOLUTION_RADIUS_KM: %q", os.Getenv("GEO_RESOLUTION_RADIUS_KM"))
	}
	dueHours := getEnvAsInt("SLA_DEFAULT_DUE_HOURS", 72)
	if dueHours <= 0 {
		return nil, fmt.Errorf("invalid SLA_DEFAULT_DUE_HOURS: %d", dueHours)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "county-tickets"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Geo: GeoConfig{
			ResolutionRadiusKm: radius,
			WardsFile:          os.Getenv("GEO_WARDS_FILE"),
		},
		SLA: SLAConfig{
			DefaultDueHours: dueHours,
			PolicyFile:      os.Getenv("SLA_POLICY_FILE"),
			MonitorSchedule: getEnvAllowEmpty("SLA_MONITOR_SCHEDULE", "*/15 * * * *"),
		},
		Tickets: TicketConfig{
			IDPrefix:                   getEnv("TICKET_ID_PREFIX", "NRB"),
			AllowPostResolutionRemarks: getEnvAsBool("TICKET_ALLOW_POST_RESOLUTION_REMARKS", true),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@nairobi.go.ke"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
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

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAllowEmpty distinguishes an explicitly empty variable from an unset one.
func getEnvAllowEmpty(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
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
