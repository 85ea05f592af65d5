package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestGetOrCreateCustomerReusesLiveCustomer(t *testing.T) {
	f := newStoreFixture()
	f.customers.Customers["cus_live"] = model.CustomerProfile{Email: "ana@example.com"}
	user := f.users.Add(model.User{Email: "ana@example.com", StripeCustomerID: "cus_live"})

	id, err := f.customerUC.GetOrCreateCustomer(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cus_live" || len(f.customers.Customers) != 1 {
		t.Fatalf("expected stored customer to be reused, got %s", id)
	}
}

func TestGetOrCreateCustomerReplacesDeletedCustomer(t *testing.T) {
	f := newStoreFixture()
	user := f.users.Add(model.User{
		Email:            "ana@example.com",
		FullName:         "Ana",
		Address:          model.Address{Line1: "Calle Mayor 1", City: "Madrid", PostalCode: "28013"},
		StripeCustomerID: "cus_gone",
	})

	id, err := f.customerUC.GetOrCreateCustomer(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cus_1" {
		t.Fatalf("expected new customer, got %s", id)
	}
	created := f.customers.Customers[id]
	if created.UserID != user.ID || created.Address.Country != "ES" {
		t.Fatalf("unexpected customer %+v", created)
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if stored.StripeCustomerID != id {
		t.Fatalf("mapping not updated: %s", stored.StripeCustomerID)
	}
}

func TestGetOrCreateCustomerPropagatesProcessorErrors(t *testing.T) {
	f := newStoreFixture()
	user := f.users.Add(model.User{Email: "ana@example.com", StripeCustomerID: "cus_x"})
	f.customers.Err = errors.New("processor unavailable")

	if _, err := f.customerUC.GetOrCreateCustomer(context.Background(), user.ID); err == nil {
		t.Fatalf("expected error")
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if stored.StripeCustomerID != "cus_x" {
		t.Fatalf("mapping must survive transient errors")
	}
}

func TestCustomerDataPrefersProcessor(t *testing.T) {
	f := newStoreFixture()
	f.customers.Customers["cus_1"] = model.CustomerProfile{Email: "ana@example.com", Name: "Ana Stripe", Phone: "600"}
	withCustomer := f.users.Add(model.User{Email: "ana@example.com", FullName: "Ana Local", StripeCustomerID: "cus_1"})
	local := f.users.Add(model.User{Email: "luis@example.com", FullName: "Luis"})

	data, err := f.customerUC.CustomerData(context.Background(), withCustomer.ID)
	if err != nil || data.Name != "Ana Stripe" || data.UserID != withCustomer.ID {
		t.Fatalf("unexpected data %+v (%v)", data, err)
	}
	data, err = f.customerUC.CustomerData(context.Background(), local.ID)
	if err != nil || data.Name != "Luis" {
		t.Fatalf("unexpected local data %+v (%v)", data, err)
	}
}

func TestUpdateProfilePushesToProcessor(t *testing.T) {
	f := newStoreFixture()
	f.customers.Customers["cus_1"] = model.CustomerProfile{}
	user := f.users.Add(model.User{Email: "ana@example.com", StripeCustomerID: "cus_1"})

	addr := model.Address{Line1: "Gran Vía 2", City: "Madrid", PostalCode: "28013"}
	if err := f.customerUC.UpdateProfile(context.Background(), user.ID, " Ana ", "600", addr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.users.GetByID(context.Background(), user.ID)
	if stored.FullName != "Ana" || stored.Address.City != "Madrid" {
		t.Fatalf("profile not stored: %+v", stored)
	}
	if remote := f.customers.Customers["cus_1"]; remote.Name != "Ana" || remote.Address.Country != "ES" {
		t.Fatalf("profile not pushed: %+v", remote)
	}

	f.customers.Err = errors.New("processor down")
	if err := f.customerUC.UpdateProfile(context.Background(), user.ID, "Ana María", "", addr); err != nil {
		t.Fatalf("push failure must not fail the update: %v", err)
	}
}
