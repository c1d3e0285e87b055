package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverMemory   = "memory"
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Cooldown drivers.
const (
	CooldownDriverMemory = "memory"
	CooldownDriverRedis  = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Ticket   TicketConfig
	Cooldown CooldownConfig
	Alert    AlertConfig
	Backup   BackupConfig
	Store    StoreConfig
	Ban      BanConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Auth     AuthConfig
	Logger   LoggerConfig
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

// TicketConfig holds the ticket lifecycle tunables.
type TicketConfig struct {
	AutoCloseAfter time.Duration
	SweepInterval  time.Duration
	AskMinLength   int
}

// CooldownConfig holds anti-spam settings.
type CooldownConfig struct {
	Driver         string
	FeedbackWindow time.Duration
}

// AlertConfig holds operator alerting settings.
type AlertConfig struct {
	Enabled         bool
	Window          time.Duration
	StartupEnabled  bool
	ShutdownEnabled bool
}

// BackupConfig holds backup archiving settings.
type BackupConfig struct {
	Enabled       bool
	Cron          string
	Dir           string
	SourceDir     string
	FilePrefix    string
	RetentionDays int
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver   string
	DataFile string
}

// BanConfig holds ban-list settings.
type BanConfig struct {
	File            string
	DefaultReason   string
	NameLinkPattern string
	BanOnNameLink   bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TelegramConfig holds the outbound notification transport settings.
type TelegramConfig struct {
	Token       string
	AdminChatID int64
}

// AuthConfig defines admin API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminPasswordHash     string
	BcryptCost            int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible. Call Validate before using the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	adminChatID, err := strconv.ParseInt(getEnv("ADMIN_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Ticket: TicketConfig{
			AutoCloseAfter: getEnvAsDuration("AUTO_CLOSE_AFTER", 24*time.Hour),
			SweepInterval:  getEnvAsDuration("SWEEP_INTERVAL", 5*time.Minute),
			AskMinLength:   getEnvAsInt("ASK_MIN_LENGTH", 10),
		},
		Cooldown: CooldownConfig{
			Driver:         getEnv("COOLDOWN_DRIVER", CooldownDriverMemory),
			FeedbackWindow: getEnvAsDuration("FEEDBACK_COOLDOWN_WINDOW", 24*time.Hour),
		},
		Alert: AlertConfig{
			Enabled:         getEnvAsBool("ERROR_ALERTS_ENABLED", true),
			Window:          getEnvAsDuration("ERROR_ALERT_WINDOW", 300*time.Second),
			StartupEnabled:  getEnvAsBool("START_ALERT", true),
			ShutdownEnabled: getEnvAsBool("SHUTDOWN_ALERT", false),
		},
		Backup: BackupConfig{
			Enabled:       getEnvAsBool("BACKUP_ENABLED", false),
			Cron:          getEnv("BACKUP_CRON", "0 3 * * *"),
			Dir:           getEnv("BACKUP_DIR", "data/backups"),
			SourceDir:     getEnv("BACKUP_SOURCE_DIR", "data"),
			FilePrefix:    getEnv("BACKUP_FILE_PREFIX", "backup_"),
			RetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 7),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", StoreDriverFile),
			DataFile: getEnv("DATA_FILE", "data/data.json"),
		},
		Ban: BanConfig{
			File:            getEnv("BANNED_FILE", "data/banned.txt"),
			DefaultReason:   getEnv("BAN_DEFAULT_REASON", "abuse"),
			NameLinkPattern: getEnv("NAME_LINK_PATTERN", `(https?://|t\.me/|@\w{5,})`),
			BanOnNameLink:   getEnvAsBool("BAN_ON_NAME_LINK", false),
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
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Telegram: TelegramConfig{
			Token:       os.Getenv("TELEGRAM_TOKEN"),
			AdminChatID: adminChatID,
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminPasswordHash:     os.Getenv("AUTH_ADMIN_PASSWORD_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate rejects nonsensical tunable combinations before anything
// starts. The sweep interval must stay below the auto-close window or
// closure latency becomes unbounded.
func (c *Config) Validate() error {
	if c.Ticket.AutoCloseAfter <= 0 {
		return fmt.Errorf("AUTO_CLOSE_AFTER must be positive, got %s", c.Ticket.AutoCloseAfter)
	}
	if c.Ticket.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.Ticket.SweepInterval)
	}
	if c.Ticket.SweepInterval >= c.Ticket.AutoCloseAfter {
		return fmt.Errorf("SWEEP_INTERVAL (%s) must be shorter than AUTO_CLOSE_AFTER (%s)",
			c.Ticket.SweepInterval, c.Ticket.AutoCloseAfter)
	}
	if c.Ticket.AskMinLength < 1 {
		return fmt.Errorf("ASK_MIN_LENGTH must be at least 1, got %d", c.Ticket.AskMinLength)
	}
	if c.Cooldown.FeedbackWindow <= 0 {
		return fmt.Errorf("FEEDBACK_COOLDOWN_WINDOW must be positive, got %s", c.Cooldown.FeedbackWindow)
	}
	if c.Cooldown.Driver != CooldownDriverMemory && c.Cooldown.Driver != CooldownDriverRedis {
		return fmt.Errorf("unknown COOLDOWN_DRIVER %q", c.Cooldown.Driver)
	}
	if c.Alert.Enabled {
		if c.Alert.Window <= 0 {
			return fmt.Errorf("ERROR_ALERT_WINDOW must be positive, got %s", c.Alert.Window)
		}
		if c.Telegram.AdminChatID == 0 {
			return fmt.Errorf("ADMIN_CHAT_ID is required when alerts are enabled")
		}
	}
	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file store")
		}
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Backup.Enabled && c.Backup.RetentionDays < 1 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must be at least 1, got %d", c.Backup.RetentionDays)
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
