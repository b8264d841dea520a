package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test to avoid duplicate registration.
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	app.Get("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/documents", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "slow down")
	})
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, pm, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, pm, _ := newPromApp(t)

	requests := []struct {
		method, target string
	}{
		{"GET", "/documents/123"},
		{"GET", "/documents/456"},
		{"DELETE", "/documents/123"},
		{"POST", "/documents"},
	}
	for _, r := range requests {
		_, err := app.Test(httptest.NewRequest(r.method, r.target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/documents/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.requestCount.WithLabelValues("DELETE", "/documents/:id", "204")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.requestCount.WithLabelValues("POST", "/documents", "429")))
	assert.Equal(t, 3, testutil.CollectAndCount(pm.requestDuration))
}

func TestPrometheusMiddleware_UnmatchedRoutes(t *testing.T) {
	app, pm, _ := newPromApp(t)

	for _, target := range []string{"/nope/1", "/nope/2", "/also-missing"} {
		_, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", unmatchedPath, "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.requestCount))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newPromApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}

func TestPrometheusMiddleware_LabelsSurviveLaterRequests(t *testing.T) {
	app, pm, reg := newPromApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/documents/1", nil))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err := app.Test(httptest.NewRequest("DELETE", "/documents/2", nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "/documents/:id", "200")))
	assert.Equal(t, float64(20), testutil.ToFloat64(pm.requestCount.WithLabelValues("DELETE", "/documents/:id", "204")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	methods := map[string]bool{}
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "method" {
					methods[lp.GetValue()] = true
				}
			}
		}
	}
	assert.Equal(t, map[string]bool{"GET": true, "DELETE": true}, methods)
}
