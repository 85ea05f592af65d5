package dto

import "time"

// ReviewRequest creates or replaces the caller's review of a product.
type ReviewRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ReviewResponse describes a review.
type ReviewResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	UserName         string    `json:"user_name"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	HelpfulCount     int       `json:"helpful_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReviewStatsResponse summarises all reviews of a product.
type ReviewStatsResponse struct {
	Average      float64        `json:"average"`
	Total        int            `json:"total"`
	Distribution map[string]int `json:"distribution"`
}

// ReviewListResponse is returned by the product reviews listing.
type ReviewListResponse struct {
	Reviews []ReviewResponse    `json:"reviews"`
	Stats   ReviewStatsResponse `json:"stats"`
}
