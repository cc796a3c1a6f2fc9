package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ActivatePasswordMessage sets the password of a registered account.
type ActivatePasswordMessage struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (e ActivatePasswordMessage) Type() string { return "user.password.activate" }

// ActivatePasswordResult holds the reduced user view and its token.
type ActivatePasswordResult struct {
	User  ProfileView `json:"user"`
	Token string      `json:"token"`
}

// ActivatePassword hashes the password, marks the account as a user and
// moves it to updated.
func (s *Auther) ActivatePassword(ctx context.Context, msg ActivatePasswordMessage) (*ActivatePasswordResult, error) {
	if msg.Password == "" {
		return nil, ErrMissingPassword
	}
	if len(msg.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	userID := strings.TrimSpace(msg.UserID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password activation")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("ActivatePassword user lookup error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}

	hash, err := s.hasher.HashPassword(msg.Password)
	if err != nil {
		if IsPasswordInputError(err) {
			return nil, err
		}
		s.logger.Error("ActivatePassword hash error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}

	from := user.Status
	user, err = s.stateMachine.Transition(ctx, actorFromUser(user), user, UserStatusUpdated,
		WithTransitionReason("password activated"),
		WithTransitionMutation(func(u *User) {
			u.PasswordHash = hash
			u.IsUser = true
		}),
	)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		if HasTextCode(err, TextCodeInvalidTransition) {
			return nil, err
		}
		s.logger.Error("ActivatePassword save error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}

	token, err := s.tokens.Issue(NewProfileClaims(user))
	if err != nil {
		s.logger.Error("ActivatePassword sign token error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordActivated, actorFromUser(user), user.ID, map[string]any{
		"from_status": from,
	})

	return &ActivatePasswordResult{User: NewProfileView(user), Token: token}, nil
}
