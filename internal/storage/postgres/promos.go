package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type promoRepository struct {
	storage *Storage
}

const promoColumns = `id, code, discount_percentage, active, max_uses, current_uses, expires_at, created_at`

func scanPromo(row pgx.Row) (model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountPercentage, &p.Active, &p.MaxUses, &p.CurrentUses, &p.ExpiresAt, &p.CreatedAt)
	return p, err
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	p, err := scanPromo(r.storage.pool.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code=$1`, strings.ToUpper(code)))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &p, nil
}

func (r *promoRepository) List(ctx context.Context) ([]model.PromoCode, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows pgx.Rows) (model.PromoCode, error) { return scanPromo(rows) })
}

func (r *promoRepository) Create(ctx context.Context, p model.PromoCode) (*model.PromoCode, error) {
	p.Code = strings.ToUpper(p.Code)
	const query = `INSERT INTO promo_codes (code, discount_percentage, active, max_uses, expires_at)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, current_uses, created_at`
	err := r.storage.pool.QueryRow(ctx, query, p.Code, p.DiscountPercentage, p.Active, p.MaxUses, p.ExpiresAt).
		Scan(&p.ID, &p.CurrentUses, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectAffected(r.storage.pool.Exec(ctx, `DELETE FROM promo_codes WHERE id=$1`, id))
}

func (r *promoRepository) IncrementUses(ctx context.Context, code string) error {
	const query = `UPDATE promo_codes SET current_uses = current_uses + 1 WHERE code=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, strings.ToUpper(code)))
}
