package dto

import "time"

// ProductResponse is a catalog entry.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SalePrice   *float64  `json:"sale_price,omitempty"`
	OnSale      bool      `json:"on_sale"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	Brand       string    `json:"brand"`
	AnimalType  string    `json:"animal_type"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	OnSale      bool     `json:"on_sale"`
	Stock       int      `json:"stock"`
	ImageURL    string   `json:"image_url"`
	Brand       string   `json:"brand"`
	AnimalType  string   `json:"animal_type"`
	Category    string   `json:"category"`
}

// SaleRequest toggles a product's sale price.
type SaleRequest struct {
	OnSale    bool     `json:"on_sale"`
	SalePrice *float64 `json:"sale_price"`
}
