package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// UpdateProfileMessage carries the editable profile fields.
type UpdateProfileMessage struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (e UpdateProfileMessage) Type() string { return "user.profile.update" }

// UpdateProfile overwrites name and avatar of an existing user. Values are
// stored as given.
func (s *Auther) UpdateProfile(ctx context.Context, msg UpdateProfileMessage) (*User, error) {
	userID := strings.TrimSpace(msg.UserID)
	if userID == "" {
		return nil, ErrMissingUserID
	}

	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during profile update")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("UpdateProfile user lookup error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}

	user.Name = msg.Name
	user.ImageURL = msg.ImageURL
	user.UpdatedAt = s.now()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("UpdateProfile save error", "user_id", userID, "error", err)
		return nil, NewInternalError(err, "")
	}
	if updated != nil {
		user = updated
	}

	s.emitAuthEvent(ctx, ActivityEventProfileUpdated, actorFromUser(user), user.ID, nil)

	return user, nil
}
