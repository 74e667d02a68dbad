package ports

import (
	"context"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// PlaceRepository persists food places. Listed places carry their aggregated
// review rating and review count.
type PlaceRepository interface {
	List(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error)
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	Create(ctx context.Context, place *domain.Place) error
	UpsertBatch(ctx context.Context, places []domain.Place) error
	Categories(ctx context.Context) ([]string, error)
}

// ReviewRepository persists reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	// ListByPlace returns one page of reviews and the total matching count.
	ListByPlace(ctx context.Context, placeID string, q domain.ReviewQuery) ([]domain.Review, int, error)
	TopByPlace(ctx context.Context, placeID string, limit int) ([]domain.Review, error)
	MarkHelpful(ctx context.Context, reviewID string) (int, error)
}
