package ports

import (
	"context"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReviewPosted(ctx context.Context, event *domain.ReviewPostedEvent) error
	PublishViewportExpanded(ctx context.Context, event *domain.ViewportExpandedEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeReviewPosted(ctx context.Context, handler func(ctx context.Context, event *domain.ReviewPostedEvent) error) error
	SubscribeViewportExpanded(ctx context.Context, handler func(ctx context.Context, event *domain.ViewportExpandedEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
