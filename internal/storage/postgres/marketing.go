package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type visitRepository struct {
	storage *Storage
}

type newsletterRepository struct {
	storage *Storage
}

func (r *visitRepository) Record(ctx context.Context, v model.Visit) error {
	const query = `INSERT INTO page_visits (path, ip_address, user_agent, referrer) VALUES ($1, $2, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, v.Path, v.IPAddress, v.UserAgent, v.Referrer)
	return err
}

func (r *newsletterRepository) Subscribe(ctx context.Context, sub model.NewsletterSubscriber) error {
	const query = `INSERT INTO newsletter_subscribers (email, promo_code) VALUES ($1, $2)`
	if _, err := r.storage.pool.Exec(ctx, query, sub.Email, sub.PromoCode); err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *newsletterRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM newsletter_subscribers WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}
