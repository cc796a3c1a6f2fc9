package notifier

import (
	"context"

	auth "github.com/goliatone/go-loan-auth"
)

// Log writes notifications to the logger instead of delivering them. It is
// the development transport.
type Log struct {
	logger auth.Logger
}

var _ auth.Notifier = (*Log)(nil)

func NewLog(logger auth.Logger) *Log {
	if logger == nil {
		logger = auth.NewSlogLogger(nil)
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, n auth.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Info("notification", "to", n.To, "subject", n.Subject, "body", n.Body)
	return nil
}
