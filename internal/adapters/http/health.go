package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// HealthHandler returns a basic liveness check.
func HealthHandler() fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// readiness collects named check results. Any failed check makes the instance
// not ready. NATS and the cache may be left unconfigured.
type readiness struct {
	checks map[string]string
	ready  bool
}

func (r *readiness) record(name string, err error) {
	if err != nil {
		r.checks[name] = "error: " + err.Error()
		r.ready = false
		return
	}
	r.checks[name] = "ok"
}

// catalogStatus is what the map can show right now.
type catalogStatus struct {
	Places       int                   `json:"places"`
	CampusBounds domain.ViewportBounds `json:"campus_bounds"`
}

// ReadyHandler checks the database, NATS and the cache, then confirms the
// place catalogue can be read. It answers 503 when the instance cannot serve
// the map.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		r := &readiness{checks: make(map[string]string), ready: true}

		if deps.DB == nil {
			r.checks["database"] = "not configured"
			r.ready = false
		} else {
			r.record("database", deps.DB.Ping(ctx))
		}

		switch {
		case deps.NATS == nil:
			r.checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			r.checks["nats"] = "ok"
		default:
			r.checks["nats"] = "disconnected"
			r.ready = false
		}

		if deps.Cache == nil {
			r.checks["cache"] = "not configured"
		} else {
			r.record("cache", deps.Cache.Ping(ctx))
		}

		var catalog catalogStatus
		if deps.Map != nil {
			catalog.CampusBounds = deps.Map.CampusBounds()
		}
		if deps.Places != nil {
			places, err := deps.Places.List(ctx, domain.PlaceFilter{})
			r.record("catalog", err)
			catalog.Places = len(places)
			if err == nil && len(places) == 0 {
				// Nearest lookups answer 404 until places are seeded.
				r.checks["catalog"] = "empty"
			}
		}

		status := "ready"
		code := fiber.StatusOK
		if !r.ready {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":  status,
			"checks":  r.checks,
			"catalog": catalog,
		})
	}
}
