package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	maxSearchLength = 100
	minSearchLength = 2
	searchLimit     = 5
)

// searchStripper removes LIKE wildcards and characters used in injection probes.
var searchStripper = strings.NewReplacer(
	"%", "", "_", "", `\`, "", "'", "", `"`, "", ";", "", "-", "", "/", "", "*", "",
)

// ProductInput is the admin payload for creating or editing a product.
type ProductInput struct {
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
}

// CatalogUseCase serves the product catalog.
type CatalogUseCase struct {
	products repository.ProductRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products}
}

// List returns products matching filter.
func (u *CatalogUseCase) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return u.products.List(ctx, filter)
}

// InStock returns every product with stock, used by the sitemap.
func (u *CatalogUseCase) InStock(ctx context.Context) ([]model.Product, error) {
	return u.products.ListInStock(ctx)
}

// GetBySlug fetches a product page.
func (u *CatalogUseCase) GetBySlug(ctx context.Context, s string) (*model.Product, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domainErrors.ErrNotFound
	}
	return u.products.GetBySlug(ctx, s)
}

// GetByID fetches a product.
func (u *CatalogUseCase) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// Search returns a few products whose name matches the query. Too short
// queries yield no results.
func (u *CatalogUseCase) Search(ctx context.Context, query string) ([]model.Product, error) {
	term := SanitizeSearch(query)
	if len([]rune(term)) < minSearchLength {
		return []model.Product{}, nil
	}
	return u.products.Search(ctx, term, searchLimit)
}

// SanitizeSearch trims a raw query to a safe search term.
func SanitizeSearch(query string) string {
	runes := []rune(query)
	if len(runes) > maxSearchLength {
		runes = runes[:maxSearchLength]
	}
	return strings.TrimSpace(searchStripper.Replace(string(runes)))
}

// Create adds a product. The slug is derived from the name when not given.
func (u *CatalogUseCase) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	return u.products.Create(ctx, product)
}

// Update replaces the editable fields of a product.
func (u *CatalogUseCase) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := u.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return u.products.GetByID(ctx, id)
}

// SetSale toggles a sale. A sale needs a price below the regular one.
func (u *CatalogUseCase) SetSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error {
	if onSale {
		product, err := u.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if salePrice == nil || *salePrice <= 0 || *salePrice >= product.Price {
			return domainErrors.ErrInvalidInput
		}
	} else {
		salePrice = nil
	}
	return u.products.SetSale(ctx, id, onSale, salePrice)
}

// Delete removes a product.
func (u *CatalogUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.products.Delete(ctx, id)
}

func (in ProductInput) toProduct() (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 || in.Stock < 0 {
		return model.Product{}, domainErrors.ErrInvalidInput
	}
	s := slug.Make(strings.TrimSpace(in.Slug))
	if s == "" {
		s = slug.Make(name)
	}
	if in.OnSale && (in.SalePrice == nil || *in.SalePrice <= 0 || *in.SalePrice >= in.Price) {
		return model.Product{}, domainErrors.ErrInvalidInput
	}
	return model.Product{
		Name:        name,
		Slug:        s,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		SalePrice:   in.SalePrice,
		OnSale:      in.OnSale,
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Brand:       strings.TrimSpace(in.Brand),
		AnimalType:  strings.TrimSpace(in.AnimalType),
		Category:    strings.TrimSpace(in.Category),
	}, nil
}
