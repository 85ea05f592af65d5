package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var userColumnNames = []string{"id", "email", "password_hash", "full_name", "phone", "address", "role", "stripe_customer_id", "created_at"}

func userRow(id int64, email, hash string, createdAt time.Time) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(userColumnNames).
		AddRow(id, email, hash, "Ana", "", model.Address{City: "Madrid"}, model.RoleUser, "", createdAt)
}

func TestUserRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()

	createdAt := time.Now()
	input := model.User{Email: "ana@example.com", PasswordHash: "hash", FullName: "Ana"}
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "hash", "Ana", "", model.Address{}, model.RoleUser).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))
	user, err := repo.Create(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 1 || user.Role != model.RoleUser || user.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(ctx, input); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("other"))
	if _, err := repo.Create(ctx, input); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryCreateGuestReturnsExistingRow(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}

	createdAt := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "Ana").
		WillReturnRows(userRow(7, "ana@example.com", "existing-hash", createdAt))

	user, err := repo.CreateGuest(context.Background(), "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 || user.IsGuest() || user.Address.City != "Madrid" {
		t.Fatalf("unexpected user: %+v", user)
	}

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("boom"))
	if _, err := repo.CreateGuest(context.Background(), "x@example.com", ""); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryGetters(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()
	createdAt := time.Now()

	mock.ExpectQuery("SELECT .* FROM users WHERE email=").WithArgs("ana@example.com").
		WillReturnRows(userRow(1, "ana@example.com", "", createdAt))
	user, err := repo.GetByEmail(ctx, "ana@example.com")
	if err != nil || user.ID != 1 || !user.IsGuest() {
		t.Fatalf("unexpected result: %+v err=%v", user, err)
	}

	mock.ExpectQuery("SELECT .* FROM users WHERE email=").WithArgs("missing@example.com").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT .* FROM users WHERE id=").WithArgs(int64(1)).
		WillReturnRows(userRow(1, "ana@example.com", "hash", createdAt))
	if _, err := repo.GetByID(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("SELECT .* FROM users WHERE id=").WithArgs(int64(2)).WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(ctx, 2); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryClaimGuest(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectQuery("UPDATE users").WithArgs(int64(3), "hash", "Ana").
		WillReturnRows(userRow(3, "ana@example.com", "hash", time.Now()))
	user, err := repo.ClaimGuest(ctx, 3, "hash", "Ana")
	if err != nil || user.PasswordHash != "hash" {
		t.Fatalf("unexpected result: %+v err=%v", user, err)
	}

	mock.ExpectQuery("UPDATE users").WithArgs(int64(4), "hash", "").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.ClaimGuest(ctx, 4, "hash", ""); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUserRepositoryUpdates(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &userRepository{storage: storage}
	ctx := context.Background()
	addr := model.Address{Line1: "Calle Mayor 1", City: "Madrid"}

	mock.ExpectExec("UPDATE users SET stripe_customer_id").WithArgs(int64(1), "cus_1").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SetStripeCustomerID(ctx, 1, "cus_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE users SET stripe_customer_id").WithArgs(int64(9), "").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.SetStripeCustomerID(ctx, 9, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE users SET full_name").WithArgs(int64(1), "Ana", "600", addr).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateProfile(ctx, 1, "Ana", "600", addr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE users SET full_name .* WHERE stripe_customer_id").WithArgs("cus_1", "Ana", "600", addr).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateProfileByStripeCustomer(ctx, "cus_1", "Ana", "600", addr); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE users SET full_name").WillReturnError(errors.New("boom"))
	if err := repo.UpdateProfile(ctx, 1, "Ana", "600", addr); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
