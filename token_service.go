package auth

import (
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is used when the configuration does not set a TTL.
const DefaultTokenExpiration = 24 * time.Hour

// DefaultSigningKeyID is the kid header used when none is configured.
const DefaultSigningKeyID = "primary"

// ErrMissingSigningKey is returned when the token service has no secret.
var ErrMissingSigningKey = errors.New("signing secret is required", errors.CategoryInternal).
	WithTextCode("MISSING_SIGNING_KEY").
	WithCode(errors.CodeInternal)

// ErrTokenExpired is returned when a token is past its exp claim.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	keyID           string
	signingKey      []byte
	keyfunc         jwt.Keyfunc
	tokenExpiration time.Duration
	issuer          string
	audience        jwt.ClaimStrings
	now             func() time.Time
	logger          Logger
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

// WithTokenLogger sets the logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		ts.logger = normalizeLogger(logger)
	}
}

// WithTokenClock overrides the clock used for iat/exp.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a TokenService from cfg. It fails when the
// signing secret is empty so a misconfigured process never starts.
func NewTokenService(cfg Config, opts ...TokenServiceOption) (*TokenService, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, ErrMissingSigningKey
	}

	keyID := cfg.GetSigningKeyID()
	if keyID == "" {
		keyID = DefaultSigningKeyID
	}

	ttl := cfg.GetTokenExpiration()
	if ttl <= 0 {
		ttl = DefaultTokenExpiration
	}

	givenKeys := map[string]keyfunc.GivenKey{
		keyID: hmacKey(cfg.GetSigningKey()),
	}
	for kid, secret := range cfg.GetPreviousSigningKeys() {
		if kid == "" || secret == "" || kid == keyID {
			continue
		}
		givenKeys[kid] = hmacKey(secret)
	}

	ts := &TokenService{
		keyID:           keyID,
		signingKey:      []byte(cfg.GetSigningKey()),
		keyfunc:         keyfunc.NewGiven(givenKeys).Keyfunc,
		tokenExpiration: ttl,
		issuer:          cfg.GetIssuer(),
		audience:        jwt.ClaimStrings(cfg.GetAudience()),
		now:             time.Now,
		logger:          defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

func hmacKey(secret string) keyfunc.GivenKey {
	return keyfunc.NewGivenCustom([]byte(secret), keyfunc.GivenKeyOptions{
		Algorithm: jwt.SigningMethodHS256.Alg(),
	})
}

// TokenExpiration returns the configured token TTL.
func (ts *TokenService) TokenExpiration() time.Duration {
	return ts.tokenExpiration
}

// Issue signs claims. Registered claims (sub, iss, aud, iat, exp, jti) are
// always set by the service; exp is mandatory.
func (ts *TokenService) Issue(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	now := ts.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    ts.issuer,
		Subject:   claims.UID,
		Audience:  ts.audience,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenExpiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ts.keyID

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Verify parses and validates a token string.
func (ts *TokenService) Verify(raw string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, ts.keyfunc, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		ts.logger.Debug("token verification failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrInvalidToken.Message).
			WithTextCode(TextCodeInvalidToken).
			WithCode(errors.CodeForbidden)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Validate adapts Verify to the jwtware.TokenValidator contract.
func (ts *TokenService) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := ts.Verify(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ jwtware.TokenValidator = (*TokenService)(nil)
