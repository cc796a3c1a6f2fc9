package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
)

// adminCNICAttempts bounds retries when a generated placeholder CNIC collides.
const adminCNICAttempts = 5

// AdminAccount describes the administrator created at startup. An empty
// CNIC gets a generated 13 digit placeholder starting with 9.
type AdminAccount struct {
	Name     string
	Email    string
	CNIC     string
	Password string
}

// EnsureAdminUser creates an activated admin account when the email is
// not registered yet. An existing account is left untouched. Empty email
// or password disables the bootstrap.
func (s *Auther) EnsureAdminUser(ctx context.Context, account AdminAccount) (*User, error) {
	email := strings.TrimSpace(account.Email)
	if email == "" || account.Password == "" {
		return nil, nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		if existing.Role != RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non admin account", "email", email, "user_id", existing.ID)
		}
		return existing, nil
	}
	if err != nil && !IsRecordNotFound(err) {
		return nil, NewInternalError(err, "check admin user")
	}

	hash, err := s.hasher.HashPassword(account.Password)
	if err != nil {
		if IsPasswordInputError(err) {
			return nil, err
		}
		return nil, NewInternalError(err, "hash admin password")
	}

	name := account.Name
	if name == "" {
		name = "Admin"
	}

	cnic := strings.TrimSpace(account.CNIC)
	generated := cnic == ""

	for attempt := 1; ; attempt++ {
		if generated {
			if cnic, err = PlaceholderCNIC(); err != nil {
				return nil, NewInternalError(err, "generate admin cnic")
			}
		}

		now := s.now()
		user := &User{
			ID:           s.newID(email),
			Name:         name,
			Email:        email,
			CNIC:         cnic,
			PasswordHash: hash,
			Role:         RoleAdmin,
			IsUser:       true,
			IsAdmin:      true,
			Status:       UserStatusUpdated,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		user.EnsureDefaults()

		created, err := s.users.Create(ctx, user)
		if err == nil {
			if created != nil {
				user = created
			}
			s.logger.Info("created admin user", "email", email, "user_id", user.ID)
			return user, nil
		}

		if !IsRecordExists(err) {
			return nil, NewInternalError(err, "create admin user")
		}
		cause := s.duplicateCause(ctx, email)
		if cause == ErrDuplicateAccount || !generated || attempt >= adminCNICAttempts {
			return nil, cause
		}
		s.logger.Warn("generated admin cnic collided, retrying", "attempt", attempt)
	}
}

// PlaceholderCNIC returns a random 13 digit CNIC in the 9xxxxxxxxxxxx range.
func PlaceholderCNIC() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000_000))
	if err != nil {
		return "", err
	}
	s := n.String()
	return "9" + strings.Repeat("0", 12-len(s)) + s, nil
}
