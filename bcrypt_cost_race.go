//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHashCost is lowered under the race detector so suites stay within timeouts.
const PasswordHashCost = bcrypt.DefaultCost

func passwordHashCost() int {
	return PasswordHashCost
}
