// Package notifier delivers auth notifications such as OTP emails over
// SMTP or through a RabbitMQ queue.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	auth "github.com/goliatone/go-loan-auth"
)

// DefaultSMTPTimeout bounds dialing and each SMTP exchange.
const DefaultSMTPTimeout = 15 * time.Second

// DeliverFunc hands a built message to the mail server.
type DeliverFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTP sends notifications through an SMTP relay.
type SMTP struct {
	config  SMTPConfig
	deliver DeliverFunc
	now     func() time.Time
	logger  auth.Logger
}

var _ auth.Notifier = (*SMTP)(nil)

// SMTPOption customizes an SMTP notifier.
type SMTPOption func(*SMTP)

// WithDeliver replaces the network delivery.
func WithDeliver(fn DeliverFunc) SMTPOption {
	return func(s *SMTP) {
		if fn != nil {
			s.deliver = fn
		}
	}
}

// WithSMTPLogger sets the logger.
func WithSMTPLogger(l auth.Logger) SMTPOption {
	return func(s *SMTP) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSMTPClock overrides the clock used for the Date header.
func WithSMTPClock(now func() time.Time) SMTPOption {
	return func(s *SMTP) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSMTP returns an SMTP notifier. From defaults to Username.
func NewSMTP(cfg SMTPConfig, opts ...SMTPOption) (*SMTP, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("notifier: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("notifier: smtp from address is required")
	}

	s := &SMTP{
		config: cfg,
		now:    time.Now,
		logger: auth.NewSlogLogger(nil),
	}
	s.deliver = s.dialAndSend
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Send implements auth.Notifier.
func (s *SMTP) Send(ctx context.Context, n auth.Notification) error {
	if strings.TrimSpace(n.To) == "" {
		return errors.New("notifier: recipient is required")
	}

	msg, err := s.message(n)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logger.Warn("smtp send abandoned", "to", n.To, "error", ctxErr)
			return errors.Join(ctxErr, err)
		}
		return fmt.Errorf("notifier: smtp send: %w", err)
	}

	s.logger.Debug("smtp notification sent", "to", n.To, "subject", n.Subject)
	return nil
}

func (s *SMTP) message(n auth.Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return nil, fmt.Errorf("notifier: from address: %w", err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("notifier: recipient address: %w", err)
	}
	msg.Subject(n.Subject)
	msg.SetDateWithValue(s.now())

	contentType := mail.TypeTextPlain
	if n.HTML {
		contentType = mail.TypeTextHTML
	}
	msg.SetBodyString(contentType, n.Body)
	return msg, nil
}

// dialAndSend opens one connection per message so concurrent sends never
// share client state.
func (s *SMTP) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(s.config.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(s.dial),
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// dial sets a hard deadline on the connection so a server that accepts
// and then stays silent cannot hold the sender past the timeout or ctx.
func (s *SMTP) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
