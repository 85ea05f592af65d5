package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// VisitRepository records anonymised page views.
type VisitRepository interface {
	Record(ctx context.Context, visit model.Visit) error
}

// NewsletterRepository stores subscribers; a duplicate email yields ErrAlreadyExists.
type NewsletterRepository interface {
	Subscribe(ctx context.Context, sub model.NewsletterSubscriber) error
	Exists(ctx context.Context, email string) (bool, error)
}
