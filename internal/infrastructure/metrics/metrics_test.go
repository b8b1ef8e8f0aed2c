package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/infrastructure/metrics"
)

func TestCollector_ContadoresDelMotor(t *testing.T) {
	c := metrics.NewCollector("concesionario-api")
	c.SideEffectFailed("jobs", resource.OpUpdate, "job-completion")
	c.SideEffectFailed("jobs", resource.OpUpdate, "job-completion")
	c.BroadcastFailed("jobs:changed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.SideEffectFailure.WithLabelValues("jobs", "update", "job-completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BroadcastFailure.WithLabelValues("jobs:changed")))
}

func TestCollector_MiddlewareYExposicion(t *testing.T) {
	c := metrics.NewCollector("concesionario-api")
	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/api/v1/:resource", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) })
	app.Get("/metrics", adaptor.HTTPHandler(c.Handler()))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GET", "/api/v1/:resource", "200")),
		"la etiqueta usa la ruta registrada, no la URL")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "concesionario_api_http_requests_total")
}
