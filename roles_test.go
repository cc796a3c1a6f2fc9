package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-loan-auth"
)

func TestUserRoleHierarchy(t *testing.T) {
	assert.True(t, auth.RoleAdmin.IsAtLeast(auth.RoleUser))
	assert.True(t, auth.RoleAdmin.IsAtLeast(auth.RoleAdmin))
	assert.False(t, auth.RoleUser.IsAtLeast(auth.RoleAdmin))
	assert.False(t, auth.UserRole("guest").IsAtLeast(auth.RoleUser))
	assert.False(t, auth.RoleAdmin.IsAtLeast(auth.UserRole("owner")))

	assert.True(t, auth.RoleAdmin.CanManageCatalog())
	assert.False(t, auth.RoleUser.CanManageCatalog())
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("owner")
	assert.False(t, ok)
}

func TestRoleAtLeast(t *testing.T) {
	admin := &auth.JWTClaims{UserRole: auth.RoleAdmin}
	user := &auth.JWTClaims{UserRole: auth.RoleUser}

	assert.True(t, auth.RoleAtLeast(admin, "user"))
	assert.True(t, auth.RoleAtLeast(admin, "admin"))
	assert.False(t, auth.RoleAtLeast(user, "admin"))
	assert.False(t, auth.RoleAtLeast(nil, "user"))
}
