package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/core/ports"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/geospatial"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/telemetry"
)

const (
	mapSessionPrefix = "map:session:"

	MarkerKindPlace = "place"
	MarkerKindUser  = "user"
)

// PlaceLister is the read side of the place catalogue the map draws from.
type PlaceLister interface {
	List(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error)
}

// MapSettings are the static map parameters.
type MapSettings struct {
	Bounds            domain.ViewportBounds
	DefaultSize       domain.ViewportSize
	MarkerMarginPx    float64
	ExpandPaddingDeg  float64
	SessionTTLSeconds int
}

// MapService places markers on the static campus map. Each session owns its
// own bounds, which start at the configured campus box and only ever grow.
type MapService struct {
	places   PlaceLister
	cache    ports.CacheService
	events   ports.EventPublisher
	settings MapSettings
	now      func() time.Time

	// mu serialises read-modify-write of session bounds.
	mu       sync.Mutex
	sessions map[string]domain.ViewportBounds
}

// NewMapService creates a new MapService. cache and events may be nil.
func NewMapService(places PlaceLister, cache ports.CacheService, events ports.EventPublisher, settings MapSettings) *MapService {
	return &MapService{
		places:   places,
		cache:    cache,
		events:   events,
		settings: settings,
		now:      time.Now,
		sessions: make(map[string]domain.ViewportBounds),
	}
}

// CampusBounds returns the bounds every session starts from.
func (s *MapService) CampusBounds() domain.ViewportBounds {
	return s.settings.Bounds
}

// Bounds returns the session's current viewport bounds.
func (s *MapService) Bounds(ctx context.Context, sessionID string) domain.ViewportBounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadBounds(ctx, sessionID)
}

// Markers projects every place onto the session's viewport. Markers that fall
// off the map are pinned to its edge and flagged Outside.
func (s *MapService) Markers(ctx context.Context, sessionID string, size domain.ViewportSize) (*domain.MapView, error) {
	ctx, span := telemetry.Start(ctx, "MapService.Markers", attribute.String("session_id", sessionID))
	defer span.End()

	size, err := s.resolveSize(size)
	if err != nil {
		return nil, err
	}

	bounds := s.Bounds(ctx, sessionID)

	places, err := s.places.List(ctx, domain.PlaceFilter{})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &domain.MapView{
		Bounds:  bounds,
		Size:    size,
		Markers: s.placeMarkers(places, bounds, size),
	}, nil
}

// Locate grows the session's bounds to include origin, then returns the user
// marker and every place marker ordered nearest first.
func (s *MapService) Locate(ctx context.Context, sessionID string, origin domain.GeoPoint, size domain.ViewportSize) (*domain.MapView, error) {
	ctx, span := telemetry.Start(ctx, "MapService.Locate",
		attribute.String("session_id", sessionID),
		attribute.Float64("lat", origin.Lat),
		attribute.Float64("lng", origin.Lng),
	)
	defer span.End()

	if !(origin.Lat >= -90 && origin.Lat <= 90 && origin.Lng >= -180 && origin.Lng <= 180) {
		return nil, fmt.Errorf("%w: coordinate %g,%g out of range", domain.ErrInvalidInput, origin.Lat, origin.Lng)
	}
	size, err := s.resolveSize(size)
	if err != nil {
		return nil, err
	}

	bounds, expanded := s.expand(ctx, sessionID, origin)

	places, err := s.places.List(ctx, domain.PlaceFilter{})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	places = geospatial.SortBy(geospatial.AnnotateDistances(origin, places), geospatial.SortByDistance)

	user := s.marker(domain.Marker{
		ID:       sessionID,
		Name:     "You are here",
		Kind:     MarkerKindUser,
		Location: origin,
	}, bounds, size)

	return &domain.MapView{
		Bounds:   bounds,
		Size:     size,
		User:     &user,
		Markers:  s.placeMarkers(places, bounds, size),
		Expanded: expanded,
	}, nil
}

// expand applies ExpandToInclude to the session's bounds under the lock and
// persists the result when it changed.
func (s *MapService) expand(ctx context.Context, sessionID string, p domain.GeoPoint) (domain.ViewportBounds, bool) {
	s.mu.Lock()
	current := s.loadBounds(ctx, sessionID)
	next, changed := geospatial.ExpandToInclude(current, p, s.settings.ExpandPaddingDeg)
	if changed {
		s.storeBounds(ctx, sessionID, next)
	}
	s.mu.Unlock()

	if !changed {
		return current, false
	}

	metrics.BoundsExpansions.WithLabelValues("locate").Inc()
	slog.DebugContext(ctx, "map bounds expanded",
		"session_id", sessionID,
		"north", next.North, "south", next.South, "east", next.East, "west", next.West,
	)

	if s.events != nil {
		event := &domain.ViewportExpandedEvent{
			SessionID: sessionID,
			Bounds:    next,
			Trigger:   p,
			At:        s.now().UTC(),
		}
		if err := s.events.PublishViewportExpanded(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish viewport expanded failed", "session_id", sessionID, "error", err)
		}
	}
	return next, true
}

// Adopt merges bounds reported by another replica into the session's bounds.
// The result covers both, so a session never loses an expansion.
func (s *MapService) Adopt(ctx context.Context, event *domain.ViewportExpandedEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, grew := union(s.loadBounds(ctx, event.SessionID), event.Bounds)
	if !grew {
		return false
	}
	s.storeBounds(ctx, event.SessionID, merged)
	metrics.BoundsExpansions.WithLabelValues("replica").Inc()
	return true
}

func (s *MapService) placeMarkers(places []domain.Place, bounds domain.ViewportBounds, size domain.ViewportSize) []domain.Marker {
	markers := make([]domain.Marker, 0, len(places))
	clamped := 0
	for _, p := range places {
		m := s.marker(domain.Marker{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     MarkerKindPlace,
			Location: p.Location(),
			Distance: p.Distance,
		}, bounds, size)
		if m.Outside {
			clamped++
		}
		markers = append(markers, m)
	}
	metrics.MarkersProjected.Add(float64(len(markers)))
	metrics.MarkersClamped.Add(float64(clamped))
	return markers
}

func (s *MapService) marker(m domain.Marker, bounds domain.ViewportBounds, size domain.ViewportSize) domain.Marker {
	px := geospatial.Project(m.Location, bounds, size)
	m.Position, m.Outside = geospatial.ClampToViewport(px, size, s.settings.MarkerMarginPx)
	return m
}

// resolveSize fills a zero size from the defaults and rejects sizes the marker
// margin cannot fit in.
func (s *MapService) resolveSize(size domain.ViewportSize) (domain.ViewportSize, error) {
	if size.WidthPx == 0 && size.HeightPx == 0 {
		return s.settings.DefaultSize, nil
	}
	margin := s.settings.MarkerMarginPx
	if !(size.WidthPx > 2*margin && size.HeightPx > 2*margin) || math.IsInf(size.WidthPx, 0) || math.IsInf(size.HeightPx, 0) {
		return domain.ViewportSize{}, fmt.Errorf("%w: viewport %gx%g cannot hold a %gpx marker margin",
			domain.ErrInvalidInput, size.WidthPx, size.HeightPx, margin)
	}
	return size, nil
}

// loadBounds must be called with mu held. The result covers both the local
// and the cached bounds, so a failed cache write cannot roll a session back.
func (s *MapService) loadBounds(ctx context.Context, sessionID string) domain.ViewportBounds {
	b, ok := s.sessions[sessionID]
	if !ok {
		b = s.settings.Bounds
	}
	var cached domain.ViewportBounds
	if cacheGet(ctx, s.cache, mapSessionPrefix+sessionID, "map.session", &cached) {
		b, _ = union(b, cached)
	}
	return b
}

// union returns the smallest bounds covering a and b.
func union(a, b domain.ViewportBounds) (domain.ViewportBounds, bool) {
	out, grewNE := geospatial.ExpandToInclude(a, domain.GeoPoint{Lat: b.North, Lng: b.East}, 0)
	out, grewSW := geospatial.ExpandToInclude(out, domain.GeoPoint{Lat: b.South, Lng: b.West}, 0)
	return out, grewNE || grewSW
}

// storeBounds must be called with mu held.
func (s *MapService) storeBounds(ctx context.Context, sessionID string, b domain.ViewportBounds) {
	s.sessions[sessionID] = b
	cacheSet(ctx, s.cache, mapSessionPrefix+sessionID, b, s.settings.SessionTTLSeconds)
}
