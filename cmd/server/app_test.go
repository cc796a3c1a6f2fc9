package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-loan-auth/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Config{
		SigningKey:          "test-secret",
		SigningKeyID:        "primary",
		TokenExpiration:     time.Hour,
		Issuer:              "loan-auth-test",
		Store:               config.StoreSQLite,
		SQLiteDSN:           ":memory:",
		Revocation:          config.RevocationMemory,
		Notifier:            config.NotifyLog,
		NotificationTimeout: time.Second,
		CORSOrigins:         []string{"*"},
		ActivityLog:         true,
		CatalogRequireAdmin: true,
		AdminName:           "Admin",
		AdminEmail:          "admin@x.io",
		AdminPassword:       "adminpass",
	}
	require.NoError(t, cfg.Validate())

	app, err := NewApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func do(t *testing.T, app *App, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestIdentityLifecycle(t *testing.T) {
	app := newTestApp(t)

	code, body := do(t, app, http.MethodPost, "/auth/register", "",
		`{"name":"Ana Lee","email":"ana@x.com","cnic":"1234567890123"}`)
	require.Equal(t, http.StatusCreated, code, body)
	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "pending", user["status"])
	assert.NotContains(t, user, "password")
	userID := user["_id"].(string)

	code, _ = do(t, app, http.MethodPost, "/auth/register", "",
		`{"name":"Ana Lee","email":"ana@x.com","cnic":"1234567890124"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = do(t, app, http.MethodPost, "/auth/login", "", `{"email":"ana@x.com","password":"pass123"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Incorrect Credentials", body["message"])

	code, body = do(t, app, http.MethodPut, "/auth/updatePassword/"+userID, "", `{"password":"pass123"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "updated", body["user"].(map[string]any)["status"])

	code, body = do(t, app, http.MethodPost, "/auth/login", "", `{"email":"ana@x.com","password":"pass123"}`)
	require.Equal(t, http.StatusOK, code, body)
	token := body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	code, body = do(t, app, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ana@x.com", body["data"].(map[string]any)["email"])

	code, _ = do(t, app, http.MethodPost, "/auth/logout", token, "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, app, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["status"])

	code, _ = do(t, app, http.MethodPost, "/auth/updateProfile", token, `{"userId":"`+userID+`","name":"Ana"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	loan := `{"title":"Wedding","maxloan":500000,"loanperiod":"3 years"}`

	code, _ := do(t, app, http.MethodPost, "/admin/addloan", "", loan)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, app, http.MethodPost, "/auth/register", "",
		`{"name":"Bo Chen","email":"bo@x.com","cnic":"1234567890125"}`)
	require.Equal(t, http.StatusCreated, code, body)
	userID := body["data"].(map[string]any)["user"].(map[string]any)["_id"].(string)
	code, body = do(t, app, http.MethodPut, "/auth/updatePassword/"+userID, "", `{"password":"pass123"}`)
	require.Equal(t, http.StatusOK, code, body)
	userToken := body["token"].(string)

	code, _ = do(t, app, http.MethodPost, "/admin/addloan", userToken, loan)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = do(t, app, http.MethodPost, "/auth/login", "", `{"email":"admin@x.io","password":"adminpass"}`)
	require.Equal(t, http.StatusOK, code, body)
	adminToken := body["data"].(map[string]any)["token"].(string)

	code, body = do(t, app, http.MethodPost, "/admin/addloan", adminToken, loan)
	require.Equal(t, http.StatusCreated, code, body)
	loanID := body["data"].(map[string]any)["_id"].(string)

	code, _ = do(t, app, http.MethodPost, "/adminCat/addCategory", adminToken, `{"title":"Valima","loanId":"`+loanID+`"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body = do(t, app, http.MethodGet, "/adminCat/getCategory?loanId="+loanID, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = do(t, app, http.MethodGet, "/admin/getloans", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "loan_auth_http_requests_total")
}
