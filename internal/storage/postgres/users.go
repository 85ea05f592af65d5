package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type userRepository struct {
	storage *Storage
}

const userColumns = `id, email, password_hash, full_name, phone, address, role, COALESCE(stripe_customer_id, ''), created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Address, &u.Role, &u.StripeCustomerID, &u.CreatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	const query = `INSERT INTO users (email, password_hash, full_name, phone, address, role)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query, user.Email, user.PasswordHash, user.FullName, user.Phone, user.Address, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &user, nil
}

// CreateGuest relies on the no-op DO UPDATE so the existing row is returned on conflict.
func (r *userRepository) CreateGuest(ctx context.Context, email, fullName string) (*model.User, error) {
	const query = `INSERT INTO users (email, full_name) VALUES ($1, $2)
                   ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
                   RETURNING ` + userColumns
	return scanUser(r.storage.pool.QueryRow(ctx, query, email, fullName))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.storage.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.storage.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

// ClaimGuest sets a password on a guest account. An account that already has
// one yields ErrAlreadyExists.
func (r *userRepository) ClaimGuest(ctx context.Context, id int64, passwordHash, fullName string) (*model.User, error) {
	const query = `UPDATE users
                   SET password_hash=$2, full_name=CASE WHEN $3 <> '' THEN $3 ELSE full_name END
                   WHERE id=$1 AND password_hash=''
                   RETURNING ` + userColumns
	user, err := scanUser(r.storage.pool.QueryRow(ctx, query, id, passwordHash, fullName))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	const query = `UPDATE users SET stripe_customer_id=NULLIF($2, '') WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, id, customerID))
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, fullName, phone string, address model.Address) error {
	const query = `UPDATE users SET full_name=$2, phone=$3, address=$4 WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, id, fullName, phone, address))
}

func (r *userRepository) UpdateProfileByStripeCustomer(ctx context.Context, customerID, fullName, phone string, address model.Address) error {
	const query = `UPDATE users SET full_name=$2, phone=$3, address=$4 WHERE stripe_customer_id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, customerID, fullName, phone, address))
}
