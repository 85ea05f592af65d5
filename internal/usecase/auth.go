package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const minPasswordLength = 8

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	mailer gateway.Mailer
	logger *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, mailer gateway.Mailer, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, mailer: mailer, logger: logger}
}

// Register creates an account and returns an auth token. A guest account
// created by an earlier checkout with the same email is claimed instead.
func (u *AuthUseCase) Register(ctx context.Context, email, password, fullName string) (*model.User, string, error) {
	email, ok := normalizeEmail(email)
	if !ok || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, "", domainErrors.ErrInvalidInput
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, model.User{Email: email, PasswordHash: hash, FullName: strings.TrimSpace(fullName)})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		usr, err = u.claimGuest(ctx, email, hash, strings.TrimSpace(fullName))
	}
	if err != nil {
		return nil, "", err
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	if err := u.mailer.SendWelcome(ctx, usr.Email, usr.DisplayName()); err != nil {
		u.logger.Warn("welcome email failed", slog.Int64("user_id", usr.ID), slog.Any("error", err))
	}
	return usr, token, nil
}

func (u *AuthUseCase) claimGuest(ctx context.Context, email, hash, fullName string) (*model.User, error) {
	existing, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !existing.IsGuest() {
		return nil, domainErrors.ErrAlreadyExists
	}
	return u.users.ClaimGuest(ctx, existing.ID, hash, fullName)
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email, ok := normalizeEmail(email)
	if !ok || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if usr.IsGuest() {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	return u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Admin: usr.Role == model.RoleAdmin})
}

// ParseToken extracts the identity carried by token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// normalizeEmail lower-cases and validates an address.
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > 254 {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}
