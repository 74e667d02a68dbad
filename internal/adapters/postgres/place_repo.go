package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// placeColumns selects a place with its live review aggregate folded into the
// imported baseline. Callers join reviews as r and group by p.id.
const placeColumns = `
	p.id, p.name, p.address, p.category, p.description, p.lat, p.lng,
	COALESCE(AVG(r.rating)::float8, p.base_rating) AS rating,
	p.base_review_count + COUNT(r.id) AS review_count,
	p.tags, p.created_at`

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// List returns places matching filter, ordered by name. Category matches
// case-insensitively; Search is a substring match on the name.
func (r *PlaceRepo) List(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+placeColumns+`
		FROM places p
		LEFT JOIN reviews r ON r.place_id = p.id
		WHERE ($1 = '' OR lower(p.category) = lower($1))
		  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%')
		GROUP BY p.id
		ORDER BY p.name
	`, filter.Category, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// GetByID returns a place by id.
func (r *PlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+placeColumns+`
		FROM places p
		LEFT JOIN reviews r ON r.place_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`, id)

	p, err := scanPlace(row)
	if err != nil {
		return nil, notFound(err, "place", id)
	}
	return &p, nil
}

// Create inserts a place and fills in its generated id and timestamp.
func (r *PlaceRepo) Create(ctx context.Context, p *domain.Place) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO places (name, address, category, description, lat, lng, base_rating, base_review_count, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, p.Name, p.Address, p.Category, p.Description, p.Lat, p.Lng,
		p.Rating, p.ReviewCount, tagsOrEmpty(p.Tags),
	).Scan(&p.ID, &p.CreatedAt)
}

// UpsertBatch inserts or updates many places using pgx.Batch. Places without
// an id get a generated one.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for _, p := range places {
		batch.Queue(`
			INSERT INTO places (id, name, address, category, description, lat, lng, base_rating, base_review_count, tags)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, address = EXCLUDED.address,
			    category = EXCLUDED.category, description = EXCLUDED.description,
			    lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			    base_rating = EXCLUDED.base_rating,
			    base_review_count = EXCLUDED.base_review_count,
			    tags = EXCLUDED.tags
		`, p.ID, p.Name, p.Address, p.Category, p.Description, p.Lat, p.Lng,
			p.Rating, p.ReviewCount, tagsOrEmpty(p.Tags))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec place %q: %w", places[i].ID, err)
		}
	}
	return nil
}

// Categories returns the distinct non-empty categories in name order.
func (r *PlaceRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT category FROM places
		WHERE category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanPlace(row pgx.Row) (domain.Place, error) {
	var p domain.Place
	err := row.Scan(
		&p.ID, &p.Name, &p.Address, &p.Category, &p.Description,
		&p.Lat, &p.Lng, &p.Rating, &p.ReviewCount, &p.Tags, &p.CreatedAt,
	)
	return p, err
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
