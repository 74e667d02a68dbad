package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/core/ports"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/telemetry"
)

const (
	defaultReviewPageSize = 10
	maxReviewPageSize     = 50
	topReviewCount        = 3
	anonymousAuthor       = "Anonymous"
	reviewCachePrefix     = "reviews:"
)

// ReviewTags are the tags a review may carry.
var ReviewTags = []string{"vegan", "cheap", "quick", "healthy", "spicy", "late-night"}

// PlaceCatalog is what reviews need from the place side: existence checks and
// cache invalidation once a rating changes.
type PlaceCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	InvalidateCache(ctx context.Context)
}

// ReviewService handles review listing and submission.
type ReviewService struct {
	reviews ports.ReviewRepository
	places  PlaceCatalog
	cache   ports.CacheService
	events  ports.EventPublisher
	now     func() time.Time
}

// NewReviewService creates a new ReviewService. cache and events may be nil.
func NewReviewService(reviews ports.ReviewRepository, places PlaceCatalog, cache ports.CacheService, events ports.EventPublisher) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		places:  places,
		cache:   cache,
		events:  events,
		now:     time.Now,
	}
}

// List returns one page of a place's reviews.
func (s *ReviewService) List(ctx context.Context, placeID string, q domain.ReviewQuery) (*domain.ReviewPage, error) {
	ctx, span := telemetry.Start(ctx, "ReviewService.List", attribute.String("place_id", placeID))
	defer span.End()

	q, err := normalizeReviewQuery(q)
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.reviews.ListByPlace(ctx, placeID, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	return &domain.ReviewPage{
		Reviews:      reviews,
		TotalReviews: total,
		TotalPages:   (total + q.PageSize - 1) / q.PageSize,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}, nil
}

// Top returns a place's highest rated reviews.
func (s *ReviewService) Top(ctx context.Context, placeID string) ([]domain.Review, error) {
	cacheKey := reviewCachePrefix + "top:" + placeID
	var reviews []domain.Review
	if cacheGet(ctx, s.cache, cacheKey, "reviews.top", &reviews) {
		return reviews, nil
	}

	reviews, err := s.reviews.TopByPlace(ctx, placeID, topReviewCount)
	if err != nil {
		return nil, fmt.Errorf("top reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	cacheSet(ctx, s.cache, cacheKey, reviews, 300)
	return reviews, nil
}

// Post validates and stores a review, then refreshes the place's cached
// rating and announces the review.
func (s *ReviewService) Post(ctx context.Context, review *domain.Review) error {
	ctx, span := telemetry.Start(ctx, "ReviewService.Post", attribute.String("place_id", review.PlaceID))
	defer span.End()

	if err := s.validate(review); err != nil {
		metrics.ReviewsRejected.Inc()
		return err
	}
	if _, err := s.places.GetByID(ctx, review.PlaceID); err != nil {
		return err
	}

	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now().UTC()
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		span.RecordError(err)
		return fmt.Errorf("create review: %w", err)
	}
	metrics.ReviewsPosted.WithLabelValues(strconv.Itoa(review.Rating)).Inc()

	s.invalidate(ctx, review.PlaceID)

	if s.events != nil {
		event := &domain.ReviewPostedEvent{
			ReviewID: review.ID,
			PlaceID:  review.PlaceID,
			Rating:   review.Rating,
			PostedAt: review.CreatedAt,
		}
		if err := s.events.PublishReviewPosted(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish review posted failed", "review_id", review.ID, "error", err)
		}
	}
	return nil
}

// MarkHelpful records a helpful vote and returns the new count.
func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID string) (int, error) {
	return s.reviews.MarkHelpful(ctx, reviewID)
}

// InvalidatePlace drops cached review data for a place. Called when another
// replica reports a new review.
func (s *ReviewService) InvalidatePlace(ctx context.Context, placeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, reviewCachePrefix+"top:"+placeID); err != nil {
		slog.WarnContext(ctx, "review cache invalidation failed", "place_id", placeID, "error", err)
	}
}

func (s *ReviewService) invalidate(ctx context.Context, placeID string) {
	s.InvalidatePlace(ctx, placeID)
	s.places.InvalidateCache(ctx)
}

func (s *ReviewService) validate(r *domain.Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", domain.ErrInvalidInput, r.Rating)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	if r.Title == "" || r.Body == "" {
		return fmt.Errorf("%w: title and body are required", domain.ErrInvalidInput)
	}
	r.Author = strings.TrimSpace(r.Author)
	if r.Author == "" {
		r.Author = anonymousAuthor
	}

	tags, err := normalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

func normalizeReviewQuery(q domain.ReviewQuery) (domain.ReviewQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultReviewPageSize
	}
	if q.PageSize > maxReviewPageSize {
		q.PageSize = maxReviewPageSize
	}

	switch q.SortBy {
	case "":
		q.SortBy = domain.ReviewSortRecent
	case domain.ReviewSortRecent, domain.ReviewSortHighest, domain.ReviewSortLowest, domain.ReviewSortHelpful:
	default:
		return q, fmt.Errorf("%w: unknown review sort %q", domain.ErrInvalidInput, q.SortBy)
	}

	tags, err := normalizeTags(q.Tags)
	if err != nil {
		return q, err
	}
	q.Tags = tags
	return q, nil
}

// normalizeTags lower-cases and de-duplicates tags, rejecting unknown ones.
// The result is never nil.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		if !slices.Contains(ReviewTags, t) {
			return nil, fmt.Errorf("%w: unknown tag %q", domain.ErrInvalidInput, t)
		}
		out = append(out, t)
	}
	return out, nil
}
