package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mailer configures the worker that drains queued email jobs into SMTP.
type Mailer struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AMQPURL   string `env:"AMQP_URL,required,notEmpty"`
	AMQPQueue string `env:"AMQP_QUEUE" envDefault:"auth.email_jobs"`
	Prefetch  int    `env:"MAILER_PREFETCH" envDefault:"4"`

	// JobTimeout bounds each relayed send.
	JobTimeout time.Duration `env:"MAILER_JOB_TIMEOUT" envDefault:"30s"`

	SMTPHost     string        `env:"SMTP_HOST,required,notEmpty"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
}

// LoadMailer reads the given .env files and parses the mailer settings.
func LoadMailer(paths ...string) (Mailer, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Mailer{}, fmt.Errorf("config: load %s: %w", p, err)
		}
	}

	cfg := Mailer{}
	if err := env.Parse(&cfg); err != nil {
		return Mailer{}, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.Prefetch < 1 {
		cfg.Prefetch = 1
	}
	return cfg, nil
}

func (m Mailer) SlogLevel() slog.Level {
	return Config{LogLevel: m.LogLevel}.SlogLevel()
}
