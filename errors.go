package auth

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
)

const (
	TextCodeValidation         = "VALIDATION_ERROR"
	TextCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	TextCodeNotRegistered      = "NOT_REGISTERED"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeRevokedToken       = jwtware.TextCodeTokenRevoked
	TextCodeMissingToken       = "MISSING_TOKEN"
	TextCodeMissingField       = "MISSING_FIELD"
	TextCodeRegistrationFailed = "REGISTRATION_FAILED"
	TextCodeInternal           = "INTERNAL_ERROR"
	TextCodeRecordNotFound     = "RECORD_NOT_FOUND"
	TextCodeRecordExists       = "RECORD_EXISTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodePasswordMismatch   = "PASSWORD_MISMATCH"
	TextCodePasswordTooLong    = "PASSWORD_TOO_LONG"
)

// ErrDuplicateAccount is returned when registering an email that is taken.
var ErrDuplicateAccount = goerrors.New("Email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(goerrors.CodeForbidden)

// ErrDuplicateCNIC is returned when registering a CNIC that is taken.
var ErrDuplicateCNIC = goerrors.New("CNIC already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateAccount).
	WithCode(goerrors.CodeForbidden)

// ErrNotRegistered is returned by login for unknown emails.
var ErrNotRegistered = goerrors.New("User is not registered", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotRegistered).
	WithCode(goerrors.CodeForbidden)

// ErrUserNotFound is returned by profile operations for unknown user ids.
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials covers unknown passwords and accounts that were
// never activated.
var ErrInvalidCredentials = goerrors.New("Incorrect Credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeForbidden)

// ErrInvalidToken is returned when a token fails signature or format checks.
var ErrInvalidToken = goerrors.New("Invalid token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeForbidden)

// ErrRevokedToken is returned for tokens that were logged out.
var ErrRevokedToken = jwtware.ErrTokenRevoked

// ErrMissingToken is returned by logout when no bearer token is present.
var ErrMissingToken = goerrors.New("Token is required for logout", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingToken).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingUserID is returned when a profile update has no user id.
var ErrMissingUserID = goerrors.New("User ID is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingField).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingPassword is returned when password activation has no password.
var ErrMissingPassword = goerrors.New("Password is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingField).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = goerrors.New("password can not be empty", goerrors.CategoryBadInput).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordTooLong is returned when a password exceeds the bcrypt input limit.
var ErrPasswordTooLong = goerrors.New("password can not be longer than 72 bytes", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordTooLong).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password does not match its hash.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrRecordNotFound is returned by stores when a lookup has no match.
var ErrRecordNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeRecordNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrRecordExists is returned by stores on unique constraint violations.
var ErrRecordExists = goerrors.New("record already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeRecordExists).
	WithCode(goerrors.CodeConflict)

// NewValidationError converts ozzo validation errors into a rich error that
// names the first violated field and lists every violation in metadata.
func NewValidationError(err error) *goerrors.Error {
	fields := map[string]any{}
	message := "invalid request"

	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		keys := make([]string, 0, len(verrs))
		for k := range verrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields[k] = verrs[k].Error()
		}
		message = keys[0] + ": " + verrs[keys[0]].Error()
	} else if err != nil {
		message = err.Error()
	}

	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"fields": fields})
}

// NewRegistrationFailedError wraps a failure that happened while registering.
func NewRegistrationFailedError(err error, metadata map[string]any) *goerrors.Error {
	rich := goerrors.Wrap(err, goerrors.CategoryOperation, "Registration failed. Could not save user or send OTP email.").
		WithTextCode(TextCodeRegistrationFailed).
		WithCode(goerrors.CodeInternal)
	if len(metadata) > 0 {
		rich = rich.WithMetadata(metadata)
	}
	return rich
}

// NewInternalError wraps a store or collaborator failure.
func NewInternalError(err error, message string) *goerrors.Error {
	if message == "" {
		message = "Internal Server Error"
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// IsRecordNotFound reports whether a store returned a not found error.
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrRecordNotFound) || HasTextCode(err, TextCodeRecordNotFound)
}

// IsRecordExists reports whether a store rejected a duplicate record.
func IsRecordExists(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrRecordExists) || HasTextCode(err, TextCodeRecordExists)
}

// IsPasswordInputError reports whether a hasher rejected the password itself
// rather than failing at runtime.
func IsPasswordInputError(err error) bool {
	return HasTextCode(err, TextCodeEmptyPassword) || HasTextCode(err, TextCodePasswordTooLong)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
