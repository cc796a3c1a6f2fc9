package auth

import "github.com/goliatone/go-loan-auth/middleware/jwtware"

var roleRank = map[UserRole]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// CanManageCatalog reports whether r may create loans and categories.
func (r UserRole) CanManageCatalog() bool {
	return r.IsAtLeast(RoleAdmin)
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	current, ok := roleRank[r]
	if !ok {
		return false
	}
	required, ok := roleRank[minRole]
	if !ok {
		return false
	}
	return current >= required
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(s)
	return role, role.IsValid()
}

// RoleAtLeast plugs into jwtware.Config.RoleChecker so a required role
// also admits higher ranked roles.
func RoleAtLeast(claims jwtware.AuthClaims, required string) bool {
	if claims == nil {
		return false
	}
	return UserRole(claims.Role()).IsAtLeast(UserRole(required))
}
