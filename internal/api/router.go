package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"solar-strategy-service/internal/api/handlers"
	"solar-strategy-service/internal/ports"
	"solar-strategy-service/internal/services"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Source  ports.RouteSource
	Store   ports.TelemetryStore
	Driver  *services.SimulationDriver
	Workers int
	Log     *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(loggingMiddleware(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	routeHandler := &handlers.RouteHandler{
		Source: deps.Source,
		Store:  deps.Store,
		Log:    deps.Log,
	}
	simHandler := &handlers.SimulationHandler{
		Source:  deps.Source,
		Driver:  deps.Driver,
		Workers: deps.Workers,
		Limiter: handlers.NewSimulationLimiter(10 * time.Second),
		Log:     deps.Log,
	}

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/routes", routeHandler.List)
	r.Get("/routes/{routeID}/telemetry", routeHandler.Telemetry)
	r.Post("/simulations", simHandler.Create)

	return r
}
