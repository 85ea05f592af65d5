package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{
		IssueFn: func(claims pkgAuth.Claims) (string, error) {
			return fmt.Sprintf("token-%d-%t", claims.UserID, claims.Admin), nil
		},
		ParseFn: func(token string) (pkgAuth.Claims, error) {
			var claims pkgAuth.Claims
			if _, err := fmt.Sscanf(token, "token-%d-%t", &claims.UserID, &claims.Admin); err != nil {
				return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
			}
			return claims, nil
		},
	}
}

func newAuthUseCase(repo *testhelpers.UserRepositoryStub, mailer *testhelpers.MailerStub) *AuthUseCase {
	return NewAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub(), mailer, discardLogger())
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	mailer := &testhelpers.MailerStub{}
	uc := newAuthUseCase(repo, mailer)

	ctx := context.Background()
	user, token, err := uc.Register(ctx, " Alice@Example.com ", "password1", "Alice")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user to have ID assigned")
	}
	if token != "token-1-false" {
		t.Fatalf("unexpected token %q", token)
	}
	stored, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != "hash:password1" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
	if len(mailer.Welcome) != 1 {
		t.Fatalf("welcome email not sent")
	}
}

func TestAuthUseCaseRegisterClaimsGuest(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	guest, _ := repo.CreateGuest(context.Background(), "ana@example.com", model.GuestName)
	uc := newAuthUseCase(repo, &testhelpers.MailerStub{})

	user, _, err := uc.Register(context.Background(), "ana@example.com", "password1", "Ana Ruiz")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID != guest.ID || user.FullName != "Ana Ruiz" || user.IsGuest() {
		t.Fatalf("guest not claimed: %+v", user)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected guest account to be reused")
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	repo.Add(model.User{Email: "taken@example.com", PasswordHash: "hash:password1"})
	uc := newAuthUseCase(repo, &testhelpers.MailerStub{})

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "password1", domainErrors.ErrInvalidCredentials},
		{"bad email", "not-an-email", "password1", domainErrors.ErrInvalidCredentials},
		{"empty password", "bob@example.com", "", domainErrors.ErrInvalidCredentials},
		{"short password", "bob@example.com", "short", domainErrors.ErrInvalidInput},
		{"taken", "taken@example.com", "password1", domainErrors.ErrAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Register(context.Background(), tc.email, tc.password, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	repo.Add(model.User{Email: "admin@example.com", PasswordHash: "hash:secret123", Role: model.RoleAdmin})
	if _, err := repo.CreateGuest(context.Background(), "guest@example.com", ""); err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	uc := newAuthUseCase(repo, &testhelpers.MailerStub{})

	_, token, err := uc.Authenticate(context.Background(), "ADMIN@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	claims, err := uc.ParseToken(token)
	if err != nil || claims.UserID != 1 || !claims.Admin {
		t.Fatalf("unexpected claims %+v (%v)", claims, err)
	}

	for _, tc := range []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{testhelpers.RandomEmail(), "secret123"},
		{"guest@example.com", ""},
		{"guest@example.com", "anything"},
	} {
		if _, _, err := uc.Authenticate(context.Background(), tc.email, tc.password); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("%s/%s: expected invalid credentials, got %v", tc.email, tc.password, err)
		}
	}
}

func TestAuthUseCaseParseTokenEmpty(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewUserRepositoryStub(), &testhelpers.MailerStub{})
	if _, err := uc.ParseToken(""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}
