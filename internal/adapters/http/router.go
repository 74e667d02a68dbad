package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(etag.New(etag.Config{
		Weak: true,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/ws")
		},
	}))

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Static routes before /places/:id
	v1.Get("/places", withTimeout(ListPlacesHandler(deps)))
	v1.Post("/places", withTimeout(CreatePlaceHandler(deps)))
	v1.Get("/places/categories", withTimeout(PlaceCategoriesHandler(deps)))
	v1.Get("/places/nearest", withTimeout(NearestPlaceHandler(deps)))
	v1.Get("/places/:id", withTimeout(GetPlaceHandler(deps)))
	v1.Get("/places/:id/reviews", withTimeout(ListReviewsHandler(deps)))
	v1.Get("/places/:id/reviews/top", withTimeout(TopReviewsHandler(deps)))
	v1.Post("/places/:id/reviews", withTimeout(PostReviewHandler(deps)))
	v1.Post("/reviews/:id/helpful", withTimeout(HelpfulReviewHandler(deps)))

	v1.Get("/map/bounds", withTimeout(MapBoundsHandler(deps)))
	v1.Get("/map/markers", withTimeout(MapMarkersHandler(deps)))
	v1.Get("/map/markers.geojson", withTimeout(MapGeoJSONHandler(deps)))
	v1.Post("/map/locate", withTimeout(LocateHandler(deps)))

	v1.Get("/distance", DistanceHandler())

	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
