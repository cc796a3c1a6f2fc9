package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultNotificationTimeout bounds the notification call made during registration.
const DefaultNotificationTimeout = 10 * time.Second

// Auther is the identity lifecycle manager: registration, login, logout,
// profile update and password activation.
type Auther struct {
	users            UserStore
	tokens           *TokenService
	revocations      RevocationRegistry
	hasher           PasswordHasher
	otp              OTPGenerator
	notifier         Notifier
	email            *VerificationEmail
	stateMachine     UserStateMachine
	activitySink     ActivitySink
	logger           Logger
	newID            IDGenerator
	notifyTimeout    time.Duration
	operationTimeout time.Duration
	now              func() time.Time
}

// NewAuthenticator returns an Auther backed by users and tokens. Defaults:
// in-memory revocations, bcrypt hashing, crypto/rand OTPs and a notifier
// that drops messages.
func NewAuthenticator(users UserStore, tokens *TokenService) *Auther {
	a := &Auther{
		users:            users,
		tokens:           tokens,
		revocations:      NewMemoryRevocations(),
		hasher:           NewBcryptHasher(),
		otp:              NewOTPGenerator(),
		notifier:         noopNotifier{},
		email:            DefaultVerificationEmail(),
		activitySink:     noopActivitySink{},
		logger:           defLogger{},
		newID:            RandomID,
		notifyTimeout:    DefaultNotificationTimeout,
		operationTimeout: 10 * time.Second,
		now:              time.Now,
	}
	a.rebuildStateMachine()
	return a
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	s.rebuildStateMachine()
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	s.rebuildStateMachine()
	return s
}

// WithRevocations sets the registry consulted by logout and the blacklist check.
func (s *Auther) WithRevocations(registry RevocationRegistry) *Auther {
	if registry != nil {
		s.revocations = registry
	}
	return s
}

// WithNotifier sets the notification collaborator used at registration.
func (s *Auther) WithNotifier(notifier Notifier) *Auther {
	s.notifier = normalizeNotifier(notifier)
	return s
}

// WithNotificationTimeout bounds each notification send.
func (s *Auther) WithNotificationTimeout(d time.Duration) *Auther {
	if d > 0 {
		s.notifyTimeout = d
	}
	return s
}

// WithVerificationEmail overrides the OTP email template.
func (s *Auther) WithVerificationEmail(email *VerificationEmail) *Auther {
	if email != nil {
		s.email = email
	}
	return s
}

// WithPasswordHasher overrides the credential codec.
func (s *Auther) WithPasswordHasher(hasher PasswordHasher) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithOTPGenerator overrides the passcode generator.
func (s *Auther) WithOTPGenerator(gen OTPGenerator) *Auther {
	if gen != nil {
		s.otp = gen
	}
	return s
}

// WithIDGenerator overrides how new account identifiers are produced.
func (s *Auther) WithIDGenerator(gen IDGenerator) *Auther {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// WithClock overrides the clock used for timestamps.
func (s *Auther) WithClock(now func() time.Time) *Auther {
	if now != nil {
		s.now = now
		s.rebuildStateMachine()
	}
	return s
}

func (s *Auther) rebuildStateMachine() {
	s.stateMachine = NewUserStateMachine(s.users,
		WithStateMachineActivitySink(s.activitySink),
		WithStateMachineLogger(s.logger),
		WithStateMachineClock(s.now),
	)
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Revocations returns the revocation registry.
func (s *Auther) Revocations() RevocationRegistry {
	return s.revocations
}

// LoginMessage holds login credentials.
type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Type returns the message type
func (m LoginMessage) Type() string {
	return "auth.user.login"
}

// Validate checks the credentials shape before any store access.
func (m LoginMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(6, 0)),
	)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Login verifies credentials and issues a token carrying the full user record.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	msg := LoginMessage{Email: strings.TrimSpace(email), Password: password}
	if err := msg.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	user, err := s.users.GetByEmail(ctx, msg.Email)
	if err != nil {
		if IsRecordNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
				"identifier": msg.Email,
				"error":      TextCodeNotRegistered,
			})
			return nil, ErrNotRegistered
		}
		s.logger.Error("Login user lookup error", "error", err)
		return nil, NewInternalError(err, "")
	}

	if !user.HasPassword() {
		s.emitLoginFailure(ctx, user, "password not activated")
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.ComparePasswordAndHash(msg.Password, user.PasswordHash); err != nil {
		if !goerrors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Error("Login compare password error", "user_id", user.ID, "error", err)
		}
		s.emitLoginFailure(ctx, user, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(NewUserClaims(user))
	if err != nil {
		s.logger.Error("Login sign token error", "user_id", user.ID, "error", err)
		return nil, NewInternalError(err, "")
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorFromUser(user), user.ID, map[string]any{
		"identifier": msg.Email,
	})

	return &LoginResult{User: user, Token: token}, nil
}

// Logout verifies token and adds it to the revocation registry.
func (s *Auther) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("Logout token verification failed", "error", err)
		return ErrInvalidToken
	}

	if err := s.revocations.Revoke(ctx, token, claims.Expires()); err != nil {
		s.logger.Error("Logout revoke token error", "user_id", claims.UserID(), "error", err)
		return NewInternalError(err, "")
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, ActorRef{ID: claims.UserID(), Type: string(claims.UserRole)}, claims.UserID(), map[string]any{
		"jti": claims.ID,
	})

	return nil
}

// IsRevoked reports whether token was logged out.
func (s *Auther) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.revocations.IsRevoked(ctx, token)
}

func (s *Auther) emitLoginFailure(ctx context.Context, user *User, reason string) {
	s.emitAuthEvent(ctx, ActivityEventLoginFailure, actorFromUser(user), user.ID, map[string]any{
		"identifier": user.Email,
		"error":      reason,
	})
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	recordActivity(ctx, s.activitySink, s.logger, s.now, ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	})
}

func actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}
	return ActorRef{ID: user.ID, Type: string(user.Role)}
}
