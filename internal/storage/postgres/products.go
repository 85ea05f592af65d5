package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

const productColumns = `id, name, slug, description, price, sale_price, on_sale, stock, image_url, brand, animal_type, category, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.SalePrice, &p.OnSale, &p.Stock,
		&p.ImageURL, &p.Brand, &p.AnimalType, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanProductRows(rows pgx.Rows) (model.Product, error) {
	return scanProduct(rows)
}

func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var (
		conds []string
		args  []any
	)
	if filter.AnimalType != "" {
		args = append(args, filter.AnimalType)
		conds = append(conds, fmt.Sprintf("animal_type=$%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.OnSale {
		conds = append(conds, "on_sale")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProductRows)
}

func (r *productRepository) ListInStock(ctx context.Context) ([]model.Product, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE stock > 0 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProductRows)
}

// Search expects an already sanitised term.
func (r *productRepository) Search(ctx context.Context, term string, limit int) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
                   WHERE name ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1
                   ORDER BY name LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProductRows)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	result := make(map[uuid.UUID]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.storage.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	list, err := collect(rows, scanProductRows)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug=$1`, slug))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &p, nil
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE name=$1 ORDER BY created_at LIMIT 1`
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (name, slug, description, price, sale_price, on_sale, stock, image_url, brand, animal_type, category)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   RETURNING id, created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.OnSale, p.Stock,
		p.ImageURL, p.Brand, p.AnimalType, p.Category).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, p model.Product) error {
	const query = `UPDATE products SET name=$2, slug=$3, description=$4, price=$5, sale_price=$6, on_sale=$7, stock=$8,
                   image_url=$9, brand=$10, animal_type=$11, category=$12, updated_at=NOW()
                   WHERE id=$1`
	err := expectAffected(r.storage.pool.Exec(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.OnSale,
		p.Stock, p.ImageURL, p.Brand, p.AnimalType, p.Category))
	if isUniqueViolation(err) {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

func (r *productRepository) SetSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error {
	const query = `UPDATE products SET on_sale=$2, sale_price=$3, updated_at=NOW() WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, id, onSale, salePrice))
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectAffected(r.storage.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id))
}
