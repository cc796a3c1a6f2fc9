package jwtware

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// BlacklistConfig configures the revocation check run ahead of routing.
type BlacklistConfig struct {
	Revocations  RevocationChecker
	ErrorHandler fiber.ErrorHandler
	TokenLookup  string
	AuthScheme   string
}

// NewBlacklist rejects requests whose bearer token was revoked. Requests
// without a token pass through, and signatures are not checked here.
func NewBlacklist(config BlacklistConfig) fiber.Handler {
	if config.Revocations == nil {
		panic("AUTH: blacklist middleware configuration: Revocations is required.")
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultErrorHandler
	}
	if config.TokenLookup == "" {
		config.TokenLookup = defaultTokenLookup
	}
	if config.AuthScheme == "" {
		config.AuthScheme = "Bearer"
	}

	extractors := GetExtractors(config.TokenLookup, config.AuthScheme)

	return func(c *fiber.Ctx) error {
		raw, err := ExtractRawToken(c, extractors)
		if err != nil || raw == "" {
			return c.Next()
		}

		revoked, err := config.Revocations.IsRevoked(c.UserContext(), raw)
		if err != nil {
			return config.ErrorHandler(c, goerrors.Wrap(err, goerrors.CategoryInternal, "could not check token revocation").
				WithCode(goerrors.CodeInternal))
		}
		if revoked {
			return config.ErrorHandler(c, ErrTokenRevoked)
		}

		return c.Next()
	}
}
