package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide Fiber Prometheus collector. The collector
// registers on the default registry, so it is created once and shared.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New(serviceName)
	})
	return promMiddleware
}

// MetricsMiddleware records request count and latency for every route.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
