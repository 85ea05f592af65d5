package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a product rating left by a customer.
type Review struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	UserID           int64
	UserName         string
	Rating           int
	Comment          string
	VerifiedPurchase bool
	HelpfulCount     int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReviewSort selects the listing order.
type ReviewSort string

const (
	ReviewSortRecent  ReviewSort = "recent"
	ReviewSortHelpful ReviewSort = "helpful"
	ReviewSortHighest ReviewSort = "highest"
	ReviewSortLowest  ReviewSort = "lowest"
)

// ParseReviewSort falls back to most recent for unknown values.
func ParseReviewSort(s string) ReviewSort {
	switch ReviewSort(s) {
	case ReviewSortHelpful, ReviewSortHighest, ReviewSortLowest:
		return ReviewSort(s)
	}
	return ReviewSortRecent
}

// ReviewStats summarises all reviews of a product.
type ReviewStats struct {
	Average      float64
	Total        int
	Distribution map[int]int
}
