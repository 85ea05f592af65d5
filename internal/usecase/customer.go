package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const defaultCountry = "ES"

// CustomerUseCase keeps processor customers in step with storefront accounts.
type CustomerUseCase struct {
	users     repository.UserRepository
	customers gateway.CustomerGateway
	logger    *slog.Logger
}

// NewCustomerUseCase constructs CustomerUseCase.
func NewCustomerUseCase(users repository.UserRepository, customers gateway.CustomerGateway, logger *slog.Logger) *CustomerUseCase {
	return &CustomerUseCase{users: users, customers: customers, logger: logger}
}

// GetOrCreateCustomer returns the user's processor customer, replacing a
// stored id the processor no longer knows.
func (u *CustomerUseCase) GetOrCreateCustomer(ctx context.Context, userID int64) (string, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.StripeCustomerID != "" {
		_, err := u.customers.GetCustomer(ctx, user.StripeCustomerID)
		if err == nil {
			return user.StripeCustomerID, nil
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return "", fmt.Errorf("verify customer: %w", err)
		}
		u.logger.Warn("stored customer missing at processor, recreating",
			slog.Int64("user_id", userID), slog.String("customer_id", user.StripeCustomerID))
		if err := u.users.SetStripeCustomerID(ctx, userID, ""); err != nil {
			return "", fmt.Errorf("clear customer: %w", err)
		}
	}

	address := user.Address
	if !address.IsZero() && address.Country == "" {
		address.Country = defaultCountry
	}
	customerID, err := u.customers.CreateCustomer(ctx, model.CustomerProfile{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.FullName,
		Phone:   user.Phone,
		Address: address,
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := u.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		return "", fmt.Errorf("store customer: %w", err)
	}
	return customerID, nil
}

// CustomerData returns contact data only. The processor copy wins when it exists.
func (u *CustomerUseCase) CustomerData(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	local := &model.CustomerProfile{UserID: user.ID, Email: user.Email, Name: user.FullName, Phone: user.Phone, Address: user.Address}
	if user.StripeCustomerID == "" {
		return local, nil
	}
	remote, err := u.customers.GetCustomer(ctx, user.StripeCustomerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return local, nil
		}
		return nil, err
	}
	remote.UserID = user.ID
	return remote, nil
}

// UpdateProfile persists the profile and pushes it to the processor. A push
// failure is logged only.
func (u *CustomerUseCase) UpdateProfile(ctx context.Context, userID int64, fullName, phone string, address model.Address) error {
	fullName, phone = strings.TrimSpace(fullName), strings.TrimSpace(phone)
	if len(fullName) > 200 || len(phone) > 30 {
		return domainErrors.ErrInvalidInput
	}
	if err := u.users.UpdateProfile(ctx, userID, fullName, phone, address); err != nil {
		return err
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil || user.StripeCustomerID == "" {
		return nil
	}
	if !address.IsZero() && address.Country == "" {
		address.Country = defaultCountry
	}
	err = u.customers.UpdateCustomer(ctx, user.StripeCustomerID, model.CustomerProfile{Name: fullName, Phone: phone, Address: address})
	if err != nil {
		u.logger.Warn("customer profile push failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
	return nil
}

// SyncCheckout copies contact and shipping details collected at checkout to
// the processor customer and to the linked account.
func (u *CustomerUseCase) SyncCheckout(ctx context.Context, session *model.CheckoutSession, owner *model.User) error {
	if session.CustomerID == "" {
		return nil
	}
	update := model.CustomerProfile{Name: session.Customer.Name, Phone: session.Customer.Phone}
	if session.Shipping != nil && !session.Shipping.Address.IsZero() {
		update.Address = session.Shipping.Address
		if update.Address.Country == "" {
			update.Address.Country = defaultCountry
		}
	}
	if update.Name == "" && update.Phone == "" && update.Address.IsZero() {
		return nil
	}
	if err := u.customers.UpdateCustomer(ctx, session.CustomerID, update); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	name, phone, address := owner.FullName, owner.Phone, owner.Address
	if update.Name != "" {
		name = update.Name
	}
	if update.Phone != "" {
		phone = update.Phone
	}
	if !update.Address.IsZero() {
		address = update.Address
	}
	err := u.users.UpdateProfileByStripeCustomer(ctx, session.CustomerID, name, phone, address)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("update local profile: %w", err)
	}
	return nil
}
