//go:build !race

package auth

// PasswordHashCost is the bcrypt work factor used for account passwords.
const PasswordHashCost = 12

func passwordHashCost() int {
	return PasswordHashCost
}
