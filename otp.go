package auth

import (
	"crypto/rand"
	"math/big"
)

const (
	// OTPMin is the smallest generated passcode.
	OTPMin = 100000
	// OTPMax is the largest generated passcode.
	OTPMax = 999999
)

// OTPGenerator produces one-time passcodes.
type OTPGenerator interface {
	Generate() (int, error)
}

// OTPGeneratorFunc adapts a function to OTPGenerator.
type OTPGeneratorFunc func() (int, error)

// Generate implements OTPGenerator.
func (f OTPGeneratorFunc) Generate() (int, error) {
	return f()
}

type randomOTP struct{}

// NewOTPGenerator returns a generator drawing uniformly from
// [OTPMin, OTPMax] using crypto/rand.
func NewOTPGenerator() OTPGenerator {
	return randomOTP{}
}

func (randomOTP) Generate() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OTPMax-OTPMin+1))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + OTPMin, nil
}
