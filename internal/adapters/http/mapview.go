package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/geospatial"
)

const (
	// HeaderSessionID identifies the map session, set by the gateway.
	HeaderSessionID  = "X-Session-ID"
	defaultSessionID = "default"
)

type locateRequest struct {
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

func sessionID(c *fiber.Ctx) string {
	if id := c.Get(HeaderSessionID); id != "" {
		return id
	}
	return defaultSessionID
}

// MapBoundsHandler returns the session's current viewport bounds.
func MapBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Map.Bounds(c.UserContext(), sessionID(c)))
	}
}

// MapMarkersHandler projects every place onto the session's viewport.
func MapMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var size domain.ViewportSize
		var err error
		if size.WidthPx, err = queryFloat(c, "width"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if size.HeightPx, err = queryFloat(c, "height"); err != nil {
			return errBadRequest(c, err.Error())
		}
		view, err := deps.Map.Markers(c.UserContext(), sessionID(c), size)
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(view)
	}
}

// MapGeoJSONHandler exports the places as a GeoJSON FeatureCollection framed by
// the session's viewport. With lat/lng each feature carries its distance.
func MapGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, ok, err := queryPoint(c, "lat", "lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ctx := c.UserContext()
		places, err := deps.Places.List(ctx, domain.PlaceFilter{Category: c.Query("category")})
		if err != nil {
			return fromError(c, err)
		}
		if ok {
			places = geospatial.AnnotateDistances(origin, places)
		}

		fc := geospatial.MarkerCollection(places, deps.Map.Bounds(ctx, sessionID(c)))
		body, err := json.Marshal(fc)
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(body)
	}
}

// LocateHandler places the user on the map, growing the session's bounds when
// the user is off the map.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lng == nil {
			return errBadRequest(c, "lat and lng are required")
		}

		origin := domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
		size := domain.ViewportSize{WidthPx: req.Width, HeightPx: req.Height}
		view, err := deps.Map.Locate(c.UserContext(), sessionID(c), origin, size)
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(view)
	}
}
