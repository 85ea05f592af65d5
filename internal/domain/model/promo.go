package model

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode is a percentage discount redeemable at checkout.
type PromoCode struct {
	ID                 uuid.UUID
	Code               string
	DiscountPercentage int
	Active             bool
	MaxUses            *int
	CurrentUses        int
	ExpiresAt          *time.Time
	CreatedAt          time.Time
}

// Expired reports whether the code is past its expiry at now.
func (p PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// Exhausted reports whether the usage limit was reached.
func (p PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}
