package jwtware

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeMissingOrMalformed = "MISSING_OR_MALFORMED_JWT"
	TextCodeTokenRevoked       = "TOKEN_REVOKED"
	TextCodeAccessDenied       = "ACCESS_DENIED"
)

// ErrJWTMissingOrMalformed is returned when no bearer token can be extracted.
var ErrJWTMissingOrMalformed = goerrors.New("missing or malformed JWT", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingOrMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenRevoked is returned for tokens present in the revocation registry.
var ErrTokenRevoked = goerrors.New("Token is no longer valid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccessDenied is returned when the role check fails.
var ErrAccessDenied = goerrors.New("access denied", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAccessDenied).
	WithCode(goerrors.CodeForbidden)

// DefaultErrorHandler writes {status:false, message} using the status code
// carried by rich errors. Other errors become 401.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusUnauthorized
	message := "Invalid or expired token"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code != 0 {
			code = richErr.Code
		}
		message = richErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  false,
		"message": message,
	})
}
