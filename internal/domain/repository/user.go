package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	// CreateGuest inserts a passwordless account or returns the existing one
	// for the same email, so concurrent checkouts converge on a single user.
	CreateGuest(ctx context.Context, email, fullName string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ClaimGuest(ctx context.Context, id int64, passwordHash, fullName string) (*model.User, error)
	SetStripeCustomerID(ctx context.Context, id int64, customerID string) error
	UpdateProfile(ctx context.Context, id int64, fullName, phone string, address model.Address) error
	UpdateProfileByStripeCustomer(ctx context.Context, customerID, fullName, phone string, address model.Address) error
}
