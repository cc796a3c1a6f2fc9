package auth

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

var cnicPattern = regexp.MustCompile(`^\d{13}$`)

// RegisterUserMessage is the registration payload.
type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	CNIC     string `json:"cnic"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate checks every field before any store access.
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(3, 30)),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.CNIC, validation.Required,
			validation.Match(cnicPattern).Error("must be a 13-digit number without dashes")),
		validation.Field(&e.ImageURL, is.URL),
	)
}

func (e RegisterUserMessage) normalize() RegisterUserMessage {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.CNIC = strings.TrimSpace(e.CNIC)
	e.ImageURL = strings.TrimSpace(e.ImageURL)
	return e
}

// RegisterUserResult is returned by a successful registration.
type RegisterUserResult struct {
	User  *User  `json:"user"`
	OTP   int    `json:"otp"`
	Token string `json:"token"`
}

// Register creates a pending account, sends the OTP notification and
// issues a token carrying the new record. The record is persisted before
// the notification is sent; a failed send is reported as
// RegistrationFailed and the record stays in place.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*RegisterUserResult, error) {
	msg = msg.normalize()
	if err := msg.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return s.register(ctx, msg)
	}
}

func (s *Auther) register(ctx context.Context, msg RegisterUserMessage) (*RegisterUserResult, error) {
	existing, err := s.users.GetByEmail(ctx, msg.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateAccount
	case err != nil && !IsRecordNotFound(err):
		s.logger.Error("Register user lookup error", "error", err)
		return nil, NewRegistrationFailedError(err, map[string]any{"stage": "lookup"})
	}

	now := s.now()
	user := &User{
		ID:        s.newID(msg.Email),
		Name:      msg.Name,
		Email:     msg.Email,
		CNIC:      msg.CNIC,
		ImageURL:  msg.ImageURL,
		Role:      RoleUser,
		Status:    UserStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.EnsureDefaults()

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if IsRecordExists(err) {
			return nil, s.duplicateCause(ctx, msg.Email)
		}
		s.logger.Error("Register create user error", "error", err)
		return nil, NewRegistrationFailedError(err, map[string]any{"stage": "persist"})
	}
	if created != nil {
		user = created
	}

	otp, err := s.otp.Generate()
	if err != nil {
		return nil, s.registrationPartialFailure(ctx, user, "otp", err)
	}

	if err := s.sendVerification(ctx, user, otp); err != nil {
		return nil, s.registrationPartialFailure(ctx, user, "notify", err)
	}

	token, err := s.tokens.Issue(NewUserClaims(user))
	if err != nil {
		return nil, s.registrationPartialFailure(ctx, user, "token", err)
	}

	s.emitAuthEvent(ctx, ActivityEventUserRegistered, actorFromUser(user), user.ID, map[string]any{
		"email": user.Email,
	})

	return &RegisterUserResult{User: user, OTP: otp, Token: token}, nil
}

func (s *Auther) sendVerification(ctx context.Context, user *User, otp int) error {
	notification, err := s.email.Render(user, otp)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- s.notifier.Send(ctx, notification)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Auther) registrationPartialFailure(ctx context.Context, user *User, stage string, err error) error {
	s.logger.Error("Register failed after user was persisted", "user_id", user.ID, "stage", stage, "error", err)
	metadata := map[string]any{
		"user_id":   user.ID,
		"stage":     stage,
		"persisted": true,
	}
	s.emitAuthEvent(ctx, ActivityEventRegistrationFailure, actorFromUser(user), user.ID, metadata)
	return NewRegistrationFailedError(err, metadata)
}

// duplicateCause tells an email collision from a CNIC one after the store
// rejected a record on a unique index.
func (s *Auther) duplicateCause(ctx context.Context, email string) error {
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return ErrDuplicateAccount
	}
	return ErrDuplicateCNIC
}
