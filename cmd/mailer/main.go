// Command mailer drains queued verification emails into SMTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/config"
	"github.com/goliatone/go-loan-auth/notifier"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("mailer stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadMailer(".env")
	if err != nil {
		return err
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(slogger)
	logger := auth.NewSlogLogger(slogger)

	smtp, err := notifier.NewSMTP(notifier.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Timeout:  cfg.SMTPTimeout,
	}, notifier.WithSMTPLogger(logger))
	if err != nil {
		return err
	}

	ch, closeFn, err := notifier.DialChannel(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("mailer: qos: %w", err)
	}

	deliveries, err := ch.Consume(
		cfg.AMQPQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("mailer: consume %s: %w", cfg.AMQPQueue, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mailer consuming", "queue", cfg.AMQPQueue, "prefetch", cfg.Prefetch, "job_timeout", cfg.JobTimeout)
	return notifier.Relay(ctx, deliveries, smtp, logger, notifier.WithJobTimeout(cfg.JobTimeout))
}
