package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	listFn       func(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Place, error)
	createFn     func(ctx context.Context, place *domain.Place) error
	categoriesFn func(ctx context.Context) ([]string, error)
	listCalls    atomic.Int32
}

func (m *mockPlaceRepo) List(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error) {
	m.listCalls.Add(1)
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockPlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Place{ID: id}, nil
}

func (m *mockPlaceRepo) Create(ctx context.Context, place *domain.Place) error {
	if m.createFn != nil {
		return m.createFn(ctx, place)
	}
	return nil
}

func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error { return nil }

func (m *mockPlaceRepo) Categories(ctx context.Context) ([]string, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, nil
}

// --- Mock ReviewRepository ---

type mockReviewRepo struct {
	createFn      func(ctx context.Context, review *domain.Review) error
	listByPlaceFn func(ctx context.Context, placeID string, q domain.ReviewQuery) ([]domain.Review, int, error)
	topByPlaceFn  func(ctx context.Context, placeID string, limit int) ([]domain.Review, error)
	markHelpfulFn func(ctx context.Context, reviewID string) (int, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	review.ID = "r-1"
	return nil
}

func (m *mockReviewRepo) ListByPlace(ctx context.Context, placeID string, q domain.ReviewQuery) ([]domain.Review, int, error) {
	if m.listByPlaceFn != nil {
		return m.listByPlaceFn(ctx, placeID, q)
	}
	return nil, 0, nil
}

func (m *mockReviewRepo) TopByPlace(ctx context.Context, placeID string, limit int) ([]domain.Review, error) {
	if m.topByPlaceFn != nil {
		return m.topByPlaceFn(ctx, placeID, limit)
	}
	return nil, nil
}

func (m *mockReviewRepo) MarkHelpful(ctx context.Context, reviewID string) (int, error) {
	if m.markHelpfulFn != nil {
		return m.markHelpfulFn(ctx, reviewID)
	}
	return 1, nil
}

// --- In-memory CacheService ---

type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *memCache) failSets(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setErr = err
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// --- Recording EventPublisher ---

type recordingPublisher struct {
	mu       sync.Mutex
	reviews  []domain.ReviewPostedEvent
	expanded []domain.ViewportExpandedEvent
	err      error
}

func (p *recordingPublisher) PublishReviewPosted(ctx context.Context, event *domain.ReviewPostedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviews = append(p.reviews, *event)
	return p.err
}

func (p *recordingPublisher) PublishViewportExpanded(ctx context.Context, event *domain.ViewportExpandedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expanded = append(p.expanded, *event)
	return p.err
}

// --- Fixtures ---

var (
	campusCenter = domain.GeoPoint{Lat: 34.0224, Lng: -118.2851}
	campusBounds = domain.ViewportBounds{North: 34.0280, South: 34.0200, East: -118.2820, West: -118.2880}
)

func campusPlaces() []domain.Place {
	return []domain.Place{
		{ID: "1", Name: "Trojan Grounds", Category: "Cafe", Lat: 34.0250, Lng: -118.2850, Rating: 4.2, ReviewCount: 12},
		{ID: "2", Name: "Everybody's Kitchen", Category: "Dining Hall", Lat: 34.0245, Lng: -118.2855, Rating: 3.8, ReviewCount: 40},
		{ID: "3", Name: "Parkside", Category: "Dining Hall", Lat: 34.0265, Lng: -118.2845, Rating: 4.5, ReviewCount: 7},
		{ID: "4", Name: "Village Dining", Category: "Dining Hall", Lat: 34.0230, Lng: -118.2865, Rating: 4.5, ReviewCount: 25},
		{ID: "5", Name: "Seeds Marketplace", Category: "Market", Lat: 34.0240, Lng: -118.2840, Rating: 3.9, ReviewCount: 40},
	}
}
