package auth

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "user"
	// RoleAdmin manages the loan catalog
	RoleAdmin UserRole = "admin"
)

// UserStatus tracks the account activation lifecycle.
type UserStatus string

const (
	// UserStatusPending is set at registration, before a password exists
	UserStatusPending UserStatus = "pending"
	// UserStatusUpdated is set once a password has been activated
	UserStatusUpdated UserStatus = "updated"
	// UserStatusNotUpdated is kept for schema compatibility; nothing
	// transitions into it.
	UserStatusNotUpdated UserStatus = "notupdated"
)

// DefaultImageURL is the avatar assigned when none is provided.
const DefaultImageURL = "https://static.vecteezy.com/system/resources/thumbnails/002/318/271/small_2x/user-profile-icon-free-vector.jpg"

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr" bson:"-" json:"-"`
	ID            string     `bun:"id,pk" bson:"_id" json:"_id"`
	Name          string     `bun:"name,notnull" bson:"name" json:"name"`
	Email         string     `bun:"email,notnull,unique" bson:"email" json:"email"`
	CNIC          string     `bun:"cnic,notnull,unique" bson:"cnic" json:"cnic"`
	PasswordHash  string     `bun:"password_hash,nullzero" bson:"password,omitempty" json:"-"`
	Role          UserRole   `bun:"role,notnull" bson:"role" json:"role"`
	IsUser        bool       `bun:"is_user,notnull" bson:"isUser" json:"isUser"`
	IsAdmin       bool       `bun:"is_admin,notnull" bson:"isAdmin" json:"isAdmin"`
	Status        UserStatus `bun:"status,notnull" bson:"status" json:"status"`
	ImageURL      string     `bun:"image_url" bson:"imageUrl" json:"imageUrl"`
	CreatedAt     time.Time  `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether the account was activated with a password.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// IsPending reports whether the account still waits for password activation.
func (u *User) IsPending() bool {
	return u != nil && u.Status == UserStatusPending
}

// EnsureDefaults fills the values a freshly registered account starts with.
func (u *User) EnsureDefaults() {
	if u == nil {
		return
	}
	if !u.Role.IsValid() {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = UserStatusPending
	}
	if strings.TrimSpace(u.ImageURL) == "" {
		u.ImageURL = DefaultImageURL
	}
}

// ProfileView is the reduced user representation returned after
// password activation.
type ProfileView struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   UserRole   `json:"role"`
	IsUser bool       `json:"isUser"`
	Status UserStatus `json:"status"`
}

// NewProfileView builds the reduced view of a user.
func NewProfileView(u *User) ProfileView {
	if u == nil {
		return ProfileView{}
	}
	return ProfileView{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		IsUser: u.IsUser,
		Status: u.Status,
	}
}
