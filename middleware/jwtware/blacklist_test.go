package jwtware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-loan-auth/middleware/jwtware"
)

func newBlacklistApp(revocations jwtware.RevocationChecker) (*fiber.App, *int) {
	hits := 0
	app := fiber.New()
	app.Use(jwtware.NewBlacklist(jwtware.BlacklistConfig{Revocations: revocations}))
	app.Get("/anything", func(c *fiber.Ctx) error {
		hits++
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, &hits
}

func TestBlacklistRejectsRevokedTokensBeforeHandlers(t *testing.T) {
	app, hits := newBlacklistApp(stubRevocations{revoked: map[string]bool{"gone": true}})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer gone")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, *hits)
}

func TestBlacklistPassesThroughOtherRequests(t *testing.T) {
	app, hits := newBlacklistApp(stubRevocations{revoked: map[string]bool{"gone": true}})

	for _, header := range []string{"", "Bearer unsigned-garbage", "Bearer active"} {
		req := httptest.NewRequest(http.MethodGet, "/anything", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode, header)
	}
	assert.Equal(t, 3, *hits)
}

func TestBlacklistReportsRegistryFailure(t *testing.T) {
	app, hits := newBlacklistApp(stubRevocations{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 0, *hits)
}

func TestBlacklistRequiresRegistry(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.NewBlacklist(jwtware.BlacklistConfig{})
	})
}
