package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       float64
	SalePrice   *float64
	OnSale      bool
	Stock       int
	ImageURL    string
	Brand       string
	AnimalType  string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice returns the sale price when the product is on sale.
func (p Product) EffectivePrice() float64 {
	if p.OnSale && p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	AnimalType string
	Category   string
	OnSale     bool
	Limit      int
}
