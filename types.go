package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging contract used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds token options
type Config interface {
	GetSigningKey() string
	GetSigningKeyID() string
	GetPreviousSigningKeys() map[string]string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetAudience() []string
}

// UserStore is the record store collaborator for user accounts.
// Lookups that find nothing return ErrRecordNotFound and unique
// constraint violations return ErrRecordExists.
type UserStore interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// Notification is a single message handed to a Notifier.
type Notification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    bool   `json:"html"`
}

// Notifier delivers notifications such as OTP emails.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification) error

// Send implements Notifier.
func (f NotifierFunc) Send(ctx context.Context, n Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, Notification) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + line(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + line(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + line(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + line(msg, args...))
}

func line(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	b.WriteString("\n")
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

// IdentityManager is the lifecycle contract exposed over HTTP.
type IdentityManager interface {
	Register(ctx context.Context, msg RegisterUserMessage) (*RegisterUserResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, msg UpdateProfileMessage) (*User, error)
	ActivatePassword(ctx context.Context, msg ActivatePasswordMessage) (*ActivatePasswordResult, error)
}

var _ IdentityManager = (*Auther)(nil)
