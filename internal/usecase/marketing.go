package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	welcomePrefix   = "BIENVENIDO"
	welcomeSuffix   = 6
	welcomeDiscount = 10
	welcomeValidity = 30 * 24 * time.Hour
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxContactMessage = 5000
)

// MarketingUseCase covers newsletter sign-ups, the contact form and visit logging.
type MarketingUseCase struct {
	newsletter repository.NewsletterRepository
	promos     repository.PromoCodeRepository
	visits     repository.VisitRepository
	mailer     gateway.Mailer
	logger     *slog.Logger
	now        func() time.Time
}

// NewMarketingUseCase constructs MarketingUseCase.
func NewMarketingUseCase(
	newsletter repository.NewsletterRepository,
	promos repository.PromoCodeRepository,
	visits repository.VisitRepository,
	mailer gateway.Mailer,
	logger *slog.Logger,
) *MarketingUseCase {
	return &MarketingUseCase{newsletter: newsletter, promos: promos, visits: visits, mailer: mailer, logger: logger, now: time.Now}
}

// Subscribe registers email and returns its single-use welcome code.
func (u *MarketingUseCase) Subscribe(ctx context.Context, email string) (string, error) {
	email, ok := normalizeEmail(email)
	if !ok {
		return "", domainErrors.ErrInvalidInput
	}
	exists, err := u.newsletter.Exists(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domainErrors.ErrAlreadyExists
	}

	code, err := welcomeCode()
	if err != nil {
		return "", err
	}
	maxUses := 1
	expires := u.now().Add(welcomeValidity)
	if _, err := u.promos.Create(ctx, model.PromoCode{
		Code:               code,
		DiscountPercentage: welcomeDiscount,
		Active:             true,
		MaxUses:            &maxUses,
		ExpiresAt:          &expires,
	}); err != nil {
		return "", fmt.Errorf("create welcome code: %w", err)
	}
	if err := u.newsletter.Subscribe(ctx, model.NewsletterSubscriber{Email: email, PromoCode: code}); err != nil {
		return "", err
	}

	if err := u.mailer.SendNewsletterWelcome(ctx, email, code); err != nil {
		u.logger.Error("newsletter welcome email failed", slog.String("email", email), slog.Any("error", err))
	}
	return code, nil
}

// Contact forwards a contact form message to support.
func (u *MarketingUseCase) Contact(ctx context.Context, msg model.ContactMessage) error {
	email, ok := normalizeEmail(msg.Email)
	msg.Name, msg.Subject, msg.Message = strings.TrimSpace(msg.Name), strings.TrimSpace(msg.Subject), strings.TrimSpace(msg.Message)
	if !ok || msg.Name == "" || msg.Message == "" || len(msg.Message) > maxContactMessage {
		return domainErrors.ErrInvalidInput
	}
	msg.Email = email
	return u.mailer.SendContact(ctx, msg)
}

// RecordVisit stores a page view. Failures are logged only.
func (u *MarketingUseCase) RecordVisit(ctx context.Context, visit model.Visit) {
	if err := u.visits.Record(ctx, visit); err != nil {
		u.logger.Warn("visit not recorded", slog.String("path", visit.Path), slog.Any("error", err))
	}
}

func welcomeCode() (string, error) {
	var b strings.Builder
	b.WriteString(welcomePrefix)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for range welcomeSuffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
