package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const maxCommentLength = 1000

// ReviewUseCase manages product reviews.
type ReviewUseCase struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews, products: products, orders: orders, users: users}
}

// List returns the product's reviews, optionally only those with rating,
// and statistics over all of them.
func (u *ReviewUseCase) List(ctx context.Context, productID uuid.UUID, sort model.ReviewSort, rating int) ([]model.Review, model.ReviewStats, error) {
	if rating < 0 || rating > 5 {
		return nil, model.ReviewStats{}, domainErrors.ErrInvalidInput
	}
	all, err := u.reviews.ListByProduct(ctx, productID, sort, 0)
	if err != nil {
		return nil, model.ReviewStats{}, err
	}
	stats := reviewStats(all)
	if rating == 0 {
		return all, stats, nil
	}
	filtered, err := u.reviews.ListByProduct(ctx, productID, sort, rating)
	if err != nil {
		return nil, model.ReviewStats{}, err
	}
	return filtered, stats, nil
}

// Upsert stores the user's review of a product, replacing an earlier one.
// created is false when an existing review was updated.
func (u *ReviewUseCase) Upsert(ctx context.Context, userID int64, productID uuid.UUID, rating int, comment string) (*model.Review, bool, error) {
	comment = strings.TrimSpace(comment)
	if rating < 1 || rating > 5 || len([]rune(comment)) > maxCommentLength {
		return nil, false, domainErrors.ErrInvalidInput
	}
	if _, err := u.products.GetByID(ctx, productID); err != nil {
		return nil, false, err
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	verified, err := u.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, false, err
	}
	return u.reviews.Upsert(ctx, model.Review{
		ProductID:        productID,
		UserID:           userID,
		UserName:         user.DisplayName(),
		Rating:           rating,
		Comment:          comment,
		VerifiedPurchase: verified,
	})
}

// Delete removes a review written by the requester, or any review for admins.
func (u *ReviewUseCase) Delete(ctx context.Context, requester Requester, id uuid.UUID) error {
	review, err := u.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanAccess(review.UserID) {
		return domainErrors.ErrForbidden
	}
	return u.reviews.Delete(ctx, id)
}

func reviewStats(reviews []model.Review) model.ReviewStats {
	stats := model.ReviewStats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(reviews) == 0 {
		return stats
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		stats.Distribution[r.Rating]++
	}
	stats.Total = len(reviews)
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(stats.Total))).Round(1)
	stats.Average = avg.InexactFloat64()
	return stats
}
