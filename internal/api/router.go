package api

import (
	"route-finder-service/internal/api/handlers"
	"route-finder-service/internal/platform/metrics"
	"route-finder-service/internal/services"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
)

type Dependencies struct {
	Pipeline *services.Pipeline
	// Sessions may be nil to disable X-Session-ID handling.
	Sessions     *services.SessionRegistry
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Upper bound on a single route or geocode request.
	RequestTimeout time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns the fiber app.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           deps.ReadTimeout,
		WriteTimeout:          deps.WriteTimeout,
		ErrorHandler:          errorHandler,
	})

	reqTimeout := deps.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = 30 * time.Second
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + handlers.HeaderSessionID,
	}))

	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(requestid.New())
	app.Use(requestContext())
	app.Use(accessLog())

	routeHandler := &handlers.RouteHandler{
		Pipeline: deps.Pipeline,
		Sessions: deps.Sessions,
		Validate: validator.New(),
	}
	geocodeHandler := &handlers.GeocodeHandler{Geocoder: deps.Pipeline.Geocoder()}

	app.Get("/health", handlers.Health(deps.Pipeline))

	v1 := app.Group("/v1")
	v1.Get("/route", timeout.NewWithContext(routeHandler.Get, reqTimeout))
	v1.Post("/route", timeout.NewWithContext(routeHandler.Post, reqTimeout))
	v1.Get("/route.geojson", timeout.NewWithContext(routeHandler.GeoJSON, reqTimeout))
	v1.Get("/geocode", timeout.NewWithContext(geocodeHandler.Resolve, reqTimeout))
	v1.Get("/reverse", timeout.NewWithContext(geocodeHandler.Reverse, reqTimeout))

	return app
}
