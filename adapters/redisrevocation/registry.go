// Package redisrevocation stores revoked tokens in Redis so every server
// instance rejects a logged out token. Keys expire with the token.
package redisrevocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	auth "github.com/goliatone/go-loan-auth"
)

const (
	DefaultPrefix = "auth:revoked:"
	// MinTTL applies to tokens revoked at or after their expiry.
	MinTTL = time.Minute
)

// Registry is a Redis backed auth.RevocationRegistry.
type Registry struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ auth.RevocationRegistry = (*Registry)(nil)

// Option customizes a Registry.
type Option func(*Registry)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithClock overrides the clock used to compute key TTLs.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New returns a Registry on client.
func New(client redis.UniversalClient, opts ...Option) *Registry {
	r := &Registry{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewFromURL parses redisURL, pings the server and returns a Registry.
func NewFromURL(ctx context.Context, redisURL string, opts ...Option) (*Registry, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(client, opts...), nil
}

// Close closes the underlying client.
func (r *Registry) Close() error {
	return r.client.Close()
}

// Revoke implements auth.RevocationRegistry.
func (r *Registry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl < MinTTL {
		ttl = MinTTL
	}
	if err := r.client.SetNX(ctx, r.key(token), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redisrevocation: revoke: %w", err)
	}
	return nil
}

// IsRevoked implements auth.RevocationRegistry.
func (r *Registry) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redisrevocation: lookup: %w", err)
	}
	return n > 0, nil
}

// key hashes the token so raw bearer credentials never reach Redis.
func (r *Registry) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + hex.EncodeToString(sum[:])
}
