package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type reviewRepository struct {
	storage *Storage
}

const reviewSelect = `SELECT r.id, r.product_id, r.user_id, COALESCE(NULLIF(u.full_name, ''), split_part(u.email, '@', 1)),
                      r.rating, r.comment, r.verified_purchase, r.helpful_count, r.created_at, r.updated_at
                      FROM reviews r JOIN users u ON u.id = r.user_id`

var reviewOrder = map[model.ReviewSort]string{
	model.ReviewSortRecent:  "r.created_at DESC",
	model.ReviewSortHelpful: "r.helpful_count DESC, r.created_at DESC",
	model.ReviewSortHighest: "r.rating DESC, r.created_at DESC",
	model.ReviewSortLowest:  "r.rating ASC, r.created_at DESC",
}

func scanReview(row pgx.Row) (model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment,
		&rv.VerifiedPurchase, &rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

// ListByProduct filters by exact rating when rating is 1..5.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, sort model.ReviewSort, rating int) ([]model.Review, error) {
	order, ok := reviewOrder[sort]
	if !ok {
		order = reviewOrder[model.ReviewSortRecent]
	}
	query := fmt.Sprintf(`%s WHERE r.product_id=$1 AND ($2 = 0 OR r.rating = $2) ORDER BY %s`, reviewSelect, order)
	if rating < 1 || rating > 5 {
		rating = 0
	}
	rows, err := r.storage.pool.Query(ctx, query, productID, rating)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows pgx.Rows) (model.Review, error) { return scanReview(rows) })
}

// Upsert uses xmax = 0 to tell an insert from an update of the existing row.
func (r *reviewRepository) Upsert(ctx context.Context, rv model.Review) (*model.Review, bool, error) {
	const query = `INSERT INTO reviews (product_id, user_id, rating, comment, verified_purchase)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (product_id, user_id) DO UPDATE
                   SET rating=EXCLUDED.rating, comment=EXCLUDED.comment,
                       verified_purchase=EXCLUDED.verified_purchase, updated_at=NOW()
                   RETURNING id, helpful_count, created_at, updated_at, (xmax = 0)`
	var created bool
	err := r.storage.pool.QueryRow(ctx, query, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, rv.VerifiedPurchase).
		Scan(&rv.ID, &rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt, &created)
	if err != nil {
		return nil, false, err
	}
	return &rv, created, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	rv, err := scanReview(r.storage.pool.QueryRow(ctx, reviewSelect+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &rv, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectAffected(r.storage.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id))
}
