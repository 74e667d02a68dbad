package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/geospatial"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 200
)

// placeDetail is a place plus the links the detail page needs.
type placeDetail struct {
	domain.Place
	DirectionsURL string `json:"directions_url"`
}

// createPlaceRequest is the body of POST /v1/places.
type createPlaceRequest struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Tags        []string `json:"tags"`
}

// queryPoint reads a coordinate pair from the query string. ok is false when
// neither parameter is present.
func queryPoint(c *fiber.Ctx, latKey, lngKey string) (p domain.GeoPoint, ok bool, err error) {
	latStr, lngStr := c.Query(latKey), c.Query(lngKey)
	if latStr == "" && lngStr == "" {
		return p, false, nil
	}
	if latStr == "" || lngStr == "" {
		return p, false, fmt.Errorf("%s and %s must be given together", latKey, lngKey)
	}
	if p.Lat, err = parseFinite(latStr); err != nil {
		return p, false, fmt.Errorf("%s must be a finite number", latKey)
	}
	if p.Lng, err = parseFinite(lngStr); err != nil {
		return p, false, fmt.Errorf("%s must be a finite number", lngKey)
	}
	return p, true, nil
}

// queryFloat reads an optional finite number from the query string.
func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return v, nil
}

// parseFinite is strconv.ParseFloat without NaN and Inf, which JSON cannot encode.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// ListPlacesHandler lists places with their distance from the caller (or the
// campus origin), ordered by the requested sort key.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := geospatial.ParseSortKey(c.Query("sort"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		origin, ok, err := queryPoint(c, "lat", "lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !ok {
			origin = deps.Origin
		}

		filter := domain.PlaceFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
		}
		if len(filter.Search) > 200 {
			return errBadRequest(c, "search too long (max 200 characters)")
		}
		if filter.RadiusMiles, err = queryFloat(c, "radius"); err != nil || filter.RadiusMiles < 0 {
			return errBadRequest(c, "radius must be a non-negative number of miles")
		}

		places, err := deps.Places.Nearby(c.UserContext(), filter, origin, key)
		if err != nil {
			return fromError(c, err)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", defaultPageLimit)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > maxPageLimit {
			limit = defaultPageLimit
		}

		total := len(places)
		if offset >= total {
			places = []domain.Place{}
		} else {
			places = places[offset:min(offset+limit, total)]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: places, Pagination: pg})
	}
}

// PlaceCategoriesHandler returns the distinct place categories.
func PlaceCategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := deps.Places.Categories(c.UserContext())
		if err != nil {
			return fromError(c, err)
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(categories)
	}
}

// NearestPlaceHandler returns the single closest place.
func NearestPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, ok, err := queryPoint(c, "lat", "lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !ok {
			origin = deps.Origin
		}

		place, err := deps.Places.Nearest(c.UserContext(), origin)
		if err != nil {
			return fromError(c, err)
		}
		return c.JSON(placeDetail{Place: *place, DirectionsURL: place.DirectionsURL()})
	}
}

// GetPlaceHandler returns one place. With lat/lng its distance is filled in.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "place id is required")
		}
		origin, ok, err := queryPoint(c, "lat", "lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		place, err := deps.Places.GetByID(c.UserContext(), id)
		if err != nil {
			return fromError(c, err)
		}
		if ok {
			d := geospatial.DistanceMiles(origin, place.Location())
			place.Distance = &d
		}
		return c.JSON(placeDetail{Place: *place, DirectionsURL: place.DirectionsURL()})
	}
}

// CreatePlaceHandler adds a place to the catalogue.
func CreatePlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createPlaceRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		place := &domain.Place{
			Name:        req.Name,
			Address:     req.Address,
			Category:    req.Category,
			Description: req.Description,
			Lat:         req.Lat,
			Lng:         req.Lng,
			Tags:        req.Tags,
		}
		if err := deps.Places.Create(c.UserContext(), place); err != nil {
			return fromError(c, err)
		}

		c.Location("/v1/places/" + place.ID)
		return c.Status(fiber.StatusCreated).JSON(placeDetail{Place: *place, DirectionsURL: place.DirectionsURL()})
	}
}

// DistanceHandler returns the great-circle distance in miles between two
// points, rounded to hundredths.
func DistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, okFrom, err := queryPoint(c, "from_lat", "from_lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		to, okTo, err := queryPoint(c, "to_lat", "to_lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !okFrom || !okTo {
			return errBadRequest(c, "from_lat, from_lng, to_lat and to_lng are required")
		}

		return c.JSON(fiber.Map{
			"from":  from,
			"to":    to,
			"miles": geospatial.DistanceMiles(from, to),
		})
	}
}
