package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/metrics"
)

func TestRecordCountsEvents(t *testing.T) {
	m := metrics.New("test")
	ctx := context.Background()

	require.NoError(t, m.Record(ctx, auth.ActivityEvent{EventType: auth.ActivityEventLoginSuccess}))
	require.NoError(t, m.Record(ctx, auth.ActivityEvent{EventType: auth.ActivityEventLoginSuccess}))
	require.NoError(t, m.Record(ctx, auth.ActivityEvent{
		EventType:  auth.ActivityEventUserStatusChanged,
		FromStatus: auth.UserStatusPending,
		ToStatus:   auth.UserStatusUpdated,
	}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActivityTotal.WithLabelValues(string(auth.ActivityEventLoginSuccess))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActivityTotal.WithLabelValues(string(auth.ActivityEventUserStatusChanged))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("pending", "updated")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := metrics.New("test")

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/users/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "nope") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/users/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_http_requests_total")
	assert.Contains(t, string(body), `path="/users/:id"`)
}

func TestMetricsAsActivitySink(t *testing.T) {
	m := metrics.New("test")
	sink := auth.MultiActivitySink{m, auth.ActivitySinkFunc(func(context.Context, auth.ActivityEvent) error { return nil })}

	require.NoError(t, sink.Record(context.Background(), auth.ActivityEvent{EventType: auth.ActivityEventLogout}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActivityTotal.WithLabelValues(string(auth.ActivityEventLogout))))
}
