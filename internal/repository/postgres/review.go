package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/pkg/database"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// Reviews live in their own table keyed by ev_id; the EV row is never
// rewritten when a review is added.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	query := `
		INSERT INTO ev_reviews (id, ev_id, user_id, content, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "review.create", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.EVID,
		review.UserID,
		review.Content,
		review.Rating,
		review.CreatedAt,
	)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("ev", review.EVID)
		case database.IsCheckViolation(err):
			return apperrors.InvalidInput("rating must be between 1 and 5")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByEV returns paginated reviews for an EV, newest first, with the total count.
func (r *ReviewRepository) ListByEV(ctx context.Context, evID string, limit, offset int) (_ []domain.Review, _ int, err error) {
	query := `
		SELECT r.id, r.ev_id, r.user_id, COALESCE(u.name, ''), r.content, r.rating, r.created_at,
		       count(*) OVER() AS total_count
		FROM ev_reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.ev_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "review.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, evID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)
	for rows.Next() {
		var rv domain.Review
		if err = rows.Scan(
			&rv.ID,
			&rv.EVID,
			&rv.UserID,
			&rv.AuthorName,
			&rv.Content,
			&rv.Rating,
			&rv.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, totalCount, nil
}

// RatingTotals returns the sum and count of an EV's ratings. Both are zero
// when the EV has no reviews.
func (r *ReviewRepository) RatingTotals(ctx context.Context, evID string) (sum, count int, err error) {
	query := `
		SELECT COALESCE(SUM(rating), 0), COUNT(*)
		FROM ev_reviews
		WHERE ev_id = $1`

	ctx, end := database.TraceQuery(ctx, "review.totals", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, evID).Scan(&sum, &count); err != nil {
		return 0, 0, fmt.Errorf("sum ratings: %w", err)
	}
	return sum, count, nil
}
