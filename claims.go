package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
)

// JWTClaims is the session token payload: a snapshot of user fields taken
// when the token was issued. The password hash is never part of it.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string     `json:"id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty"`
	CNIC     string     `json:"cnic,omitempty"`
	UserRole UserRole   `json:"role,omitempty"`
	IsUser   bool       `json:"isUser"`
	IsAdmin  *bool      `json:"isAdmin,omitempty"`
	Status   UserStatus `json:"status,omitempty"`
	ImageURL string     `json:"imageUrl,omitempty"`
}

var _ jwtware.AuthClaims = (*JWTClaims)(nil)

// NewUserClaims snapshots the full user record, as issued by
// registration and login.
func NewUserClaims(u *User) *JWTClaims {
	if u == nil {
		return &JWTClaims{}
	}
	isAdmin := u.IsAdmin
	return &JWTClaims{
		UID:      u.ID,
		Name:     u.Name,
		Email:    u.Email,
		CNIC:     u.CNIC,
		UserRole: u.Role,
		IsUser:   u.IsUser,
		IsAdmin:  &isAdmin,
		Status:   u.Status,
		ImageURL: u.ImageURL,
	}
}

// NewProfileClaims snapshots the reduced claim set issued after
// password activation.
func NewProfileClaims(u *User) *JWTClaims {
	if u == nil {
		return &JWTClaims{}
	}
	return &JWTClaims{
		UID:      u.ID,
		Name:     u.Name,
		Email:    u.Email,
		UserRole: u.Role,
		IsUser:   u.IsUser,
		Status:   u.Status,
	}
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return string(c.UserRole)
}

// HasRole checks the global role
func (c *JWTClaims) HasRole(role string) bool {
	return string(c.UserRole) == role
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
