// Package config loads service settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	auth "github.com/goliatone/go-loan-auth"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	RevocationMemory = "memory"
	RevocationRedis  = "redis"

	NotifyLog  = "log"
	NotifySMTP = "smtp"
	NotifyAMQP = "amqp"
)

// Config is the service configuration.
type Config struct {
	Addr  string `env:"ADDR" envDefault:":4000"`
	Debug bool   `env:"DEBUG"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SigningKey          string            `env:"AUTH_SECRET,required,notEmpty"`
	SigningKeyID        string            `env:"AUTH_SECRET_ID" envDefault:"primary"`
	PreviousSigningKeys map[string]string `env:"AUTH_PREVIOUS_SECRETS"`
	TokenExpiration     time.Duration     `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	Issuer              string            `env:"AUTH_ISSUER" envDefault:"loan-auth"`
	Audience            []string          `env:"AUTH_AUDIENCE" envSeparator:","`
	DeterministicIDs    bool              `env:"AUTH_DETERMINISTIC_IDS"`

	Store     string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLiteDSN string `env:"SQLITE_DSN" envDefault:"file:loan-auth.db?cache=shared"`
	MongoURI  string `env:"MONGODB_URI"`
	MongoDB   string `env:"MONGODB_DATABASE" envDefault:"loan_auth"`

	Revocation string `env:"REVOCATION_BACKEND" envDefault:"memory"`
	RedisURL   string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Notifier            string        `env:"NOTIFY_TRANSPORT" envDefault:"log"`
	NotificationTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	SMTPHost            string        `env:"SMTP_HOST"`
	SMTPPort            int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername        string        `env:"SMTP_USERNAME"`
	SMTPPassword        string        `env:"SMTP_PASSWORD"`
	SMTPFrom            string        `env:"SMTP_FROM"`
	SMTPTimeout         time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
	AMQPURL             string        `env:"AMQP_URL"`
	AMQPQueue           string        `env:"AMQP_QUEUE" envDefault:"auth.email_jobs"`

	// ActivityLog writes audit entries to the service log.
	ActivityLog bool `env:"ACTIVITY_LOG" envDefault:"true"`
	// ActivityQueue publishes audit entries to AMQP_URL when set.
	ActivityQueue string `env:"ACTIVITY_QUEUE"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// CatalogRequireAdmin guards catalog writes with an admin token. Writes
	// are open when unset.
	CatalogRequireAdmin bool `env:"CATALOG_REQUIRE_ADMIN" envDefault:"false"`

	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	// AdminCNIC is generated when empty.
	AdminCNIC string `env:"ADMIN_CNIC"`
}

var _ auth.Config = Config{}

// Load reads the given .env files, missing files are ignored, and then
// parses the environment. Variables already set win over file values.
func Load(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", p, err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend selections and their required settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGODB_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store)
	}

	switch c.Revocation {
	case RevocationMemory, RevocationRedis:
	default:
		return fmt.Errorf("config: unknown REVOCATION_BACKEND %q", c.Revocation)
	}

	switch c.Notifier {
	case NotifyLog:
	case NotifySMTP:
		if c.SMTPHost == "" {
			return errors.New("config: SMTP_HOST is required for the smtp transport")
		}
	case NotifyAMQP:
		if c.AMQPURL == "" {
			return errors.New("config: AMQP_URL is required for the amqp transport")
		}
	default:
		return fmt.Errorf("config: unknown NOTIFY_TRANSPORT %q", c.Notifier)
	}

	if c.ActivityQueue != "" && c.AMQPURL == "" {
		return errors.New("config: AMQP_URL is required to publish ACTIVITY_QUEUE")
	}

	if c.TokenExpiration <= 0 {
		return errors.New("config: AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) GetSigningKey() string                     { return c.SigningKey }
func (c Config) GetSigningKeyID() string                   { return c.SigningKeyID }
func (c Config) GetPreviousSigningKeys() map[string]string { return c.PreviousSigningKeys }
func (c Config) GetTokenExpiration() time.Duration         { return c.TokenExpiration }
func (c Config) GetIssuer() string                         { return c.Issuer }
func (c Config) GetAudience() []string                     { return c.Audience }

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HasAdmin reports whether bootstrap admin credentials are configured.
func (c Config) HasAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}
