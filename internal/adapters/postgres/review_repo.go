package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

const reviewColumns = `id, place_id, author, rating, title, body, tags, helpful_count, created_at`

// reviewOrder whitelists ORDER BY clauses; never interpolate user input.
var reviewOrder = map[domain.ReviewSort]string{
	domain.ReviewSortRecent:  "created_at DESC, id",
	domain.ReviewSortHighest: "rating DESC, created_at DESC",
	domain.ReviewSortLowest:  "rating ASC, created_at DESC",
	domain.ReviewSortHelpful: "helpful_count DESC, created_at DESC",
}

// ReviewRepo implements ports.ReviewRepository with pgx.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review and fills in its generated id.
func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO reviews (place_id, author, rating, title, body, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, rv.PlaceID, rv.Author, rv.Rating, rv.Title, rv.Body, tagsOrEmpty(rv.Tags), rv.CreatedAt,
	).Scan(&rv.ID)
}

// ListByPlace returns one page of a place's reviews carrying every tag in
// q.Tags, plus the total number of matching reviews.
func (r *ReviewRepo) ListByPlace(ctx context.Context, placeID string, q domain.ReviewQuery) ([]domain.Review, int, error) {
	order, ok := reviewOrder[q.SortBy]
	if !ok {
		order = reviewOrder[domain.ReviewSortRecent]
	}
	tags := tagsOrEmpty(q.Tags)

	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM reviews
		WHERE place_id = $1 AND tags @> $2::text[]
	`, placeID, tags).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE place_id = $1 AND tags @> $2::text[]
		ORDER BY `+order+`
		LIMIT $3 OFFSET $4
	`, placeID, tags, q.PageSize, q.Offset())
	if err != nil {
		return nil, 0, err
	}

	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// TopByPlace returns a place's highest rated reviews, newest first on ties.
func (r *ReviewRepo) TopByPlace(ctx context.Context, placeID string, limit int) ([]domain.Review, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE place_id = $1
		ORDER BY rating DESC, created_at DESC
		LIMIT $2
	`, placeID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanReview)
}

// MarkHelpful increments a review's helpful count and returns the new value.
func (r *ReviewRepo) MarkHelpful(ctx context.Context, reviewID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE reviews SET helpful_count = helpful_count + 1
		WHERE id = $1
		RETURNING helpful_count
	`, reviewID).Scan(&count)
	if err != nil {
		return 0, notFound(err, "review", reviewID)
	}
	return count, nil
}

func scanReview(row pgx.CollectableRow) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID, &rv.PlaceID, &rv.Author, &rv.Rating, &rv.Title, &rv.Body,
		&rv.Tags, &rv.HelpfulCount, &rv.CreatedAt,
	)
	return rv, err
}
