// Package metrics expone contadores Prometheus del motor de recursos y de HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
)

var _ resource.Metrics = (*Collector)(nil)

// Collector agrupa las métricas del servicio sobre un registro propio.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	SideEffectFailure *prometheus.CounterVec
	BroadcastFailure  *prometheus.CounterVec
}

// NewCollector registra las métricas bajo el namespace del servicio.
func NewCollector(serviceName string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	ns := strings.ReplaceAll(serviceName, "-", "_")

	return &Collector{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),

		SideEffectFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "resource",
			Name:      "side_effect_failures_total",
			Help:      "Side-effect hooks that failed after a committed mutation.",
		}, []string{"resource", "operation", "hook"}),

		BroadcastFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "resource",
			Name:      "broadcast_failures_total",
			Help:      "Change events that could not be published.",
		}, []string{"event"}),
	}
}

func (c *Collector) SideEffectFailed(res string, op resource.Operation, hook string) {
	c.SideEffectFailure.WithLabelValues(res, string(op), hook).Inc()
}

func (c *Collector) BroadcastFailed(event string) {
	c.BroadcastFailure.WithLabelValues(event).Inc()
}

// Middleware cuenta peticiones por ruta registrada (no por URL, para acotar la cardinalidad).
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		status := ctx.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := ctx.Route().Path
		c.RequestsTotal.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		c.RequestDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposición en formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
