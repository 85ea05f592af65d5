package payments

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestMapSession(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:            "cs_123",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   4500,
		Created:       1767225600,
		Metadata: map[string]string{
			"user_id":          "42",
			"promo_code":       "SAVE10",
			"discount_percent": "10",
		},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
		Customer:      &stripe.Customer{ID: "cus_1"},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: " ana@example.com ",
			Name:  "Ana",
			Phone: "+34600000000",
		},
		CollectedInformation: &stripe.CheckoutSessionCollectedInformation{
			ShippingDetails: &stripe.CheckoutSessionCollectedInformationShippingDetails{
				Name:    "Ana",
				Address: &stripe.Address{Line1: "Calle Mayor 1", City: "Madrid", PostalCode: "28001", Country: "ES"},
			},
		},
	}

	got := mapSession(sess)

	assert.Equal(t, "cs_123", got.ID)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, int64(4500), got.AmountTotal)
	assert.Equal(t, "pi_1", got.PaymentIntentID)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, model.SessionMetadata{UserID: "42", PromoCode: "SAVE10", DiscountPercent: 10}, got.Metadata)
	assert.Equal(t, "ana@example.com", got.Customer.Email)
	require.NotNil(t, got.Shipping)
	assert.Equal(t, "Madrid", got.Shipping.Address.City)
	assert.Equal(t, int64(1767225600), got.CreatedAt.Unix())
}

func TestMapSessionWithoutOptionalParts(t *testing.T) {
	got := mapSession(&stripe.CheckoutSession{ID: "cs_1", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid})

	assert.Equal(t, model.PaymentStatusUnpaid, got.PaymentStatus)
	assert.Empty(t, got.PaymentIntentID)
	assert.Empty(t, got.CustomerID)
	assert.Nil(t, got.Shipping)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestMapSessionRefundedCharge(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:            "cs_2",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_2", LatestCharge: &stripe.Charge{ID: "ch_2", Refunded: true}},
	}
	assert.True(t, mapSession(sess).Refunded)

	sess.PaymentIntent.LatestCharge.Refunded = false
	assert.False(t, mapSession(sess).Refunded)

	sess.PaymentIntent = &stripe.PaymentIntent{ID: "pi_2"}
	assert.False(t, mapSession(sess).Refunded)
}

func TestMapMetadataIgnoresMalformedDiscount(t *testing.T) {
	cases := map[string]int{"": 0, "abc": 0, "-5": 0, "15": 15, " 20 ": 20}
	for raw, want := range cases {
		got := mapMetadata(map[string]string{"discount_percent": raw})
		assert.Equal(t, want, got.DiscountPercent, "raw %q", raw)
	}
	assert.Equal(t, model.SessionMetadata{}, mapMetadata(nil))
}

func TestMapLineItem(t *testing.T) {
	li := &stripe.LineItem{
		Description: "Pienso",
		Quantity:    2,
		AmountTotal: 4500,
		Price: &stripe.Price{Product: &stripe.Product{
			Name:     "Pienso",
			Metadata: map[string]string{"product_id": "7b5b0d2e-1f3c-4a8e-9a6f-0d4c8f1e2a3b"},
		}},
	}
	got := mapLineItem(li)
	assert.Equal(t, model.LineItem{Description: "Pienso", Quantity: 2, AmountTotal: 4500, ProductID: "7b5b0d2e-1f3c-4a8e-9a6f-0d4c8f1e2a3b"}, got)

	bare := mapLineItem(&stripe.LineItem{Description: model.ShippingLineDescription, Quantity: 1, AmountTotal: 499})
	assert.Empty(t, bare.ProductID)

	named := mapLineItem(&stripe.LineItem{Quantity: 1, Price: &stripe.Price{Product: &stripe.Product{Name: "Arena"}}})
	assert.Equal(t, "Arena", named.Description)
}

func TestMapCustomer(t *testing.T) {
	got := mapCustomer(&stripe.Customer{
		Email:    "ana@example.com",
		Name:     "Ana",
		Metadata: map[string]string{"user_id": "7"},
		Address:  &stripe.Address{City: "Madrid"},
	})
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "Madrid", got.Address.City)

	assert.Zero(t, mapCustomer(&stripe.Customer{Metadata: map[string]string{"user_id": "x"}}).UserID)
}

func TestCustomerParams(t *testing.T) {
	params := customerParams(model.CustomerProfile{
		UserID:  9,
		Email:   "ana@example.com",
		Name:    "Ana",
		Address: model.Address{Line1: "Calle Mayor 1", Country: "ES"},
	})
	require.NotNil(t, params.Email)
	assert.Equal(t, "ana@example.com", *params.Email)
	assert.Nil(t, params.Phone)
	require.NotNil(t, params.Address)
	assert.Equal(t, "ES", *params.Address.Country)
	assert.Equal(t, "9", params.Metadata["user_id"])

	empty := customerParams(model.CustomerProfile{})
	assert.Nil(t, empty.Address)
	assert.Empty(t, empty.Metadata)
}

func TestSessionParams(t *testing.T) {
	productID := uuid.New()
	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{
			{ProductID: productID, Name: "Pienso", ImageURL: "https://img/p.png", UnitAmount: 2025, Quantity: 2},
			{Name: model.ShippingLineDescription, UnitAmount: model.ShippingCostMinor, Quantity: 1},
		},
		CustomerID: "cus_1",
		Metadata:   model.SessionMetadata{UserID: "42", PromoCode: "SAVE10", DiscountPercent: 10},
		SuccessURL: "https://benice.es/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://benice.es/carrito",
	}

	params := sessionParams(req)

	assert.Equal(t, "payment", *params.Mode)
	require.Len(t, params.LineItems, 2)
	first := params.LineItems[0]
	assert.Equal(t, int64(2025), *first.PriceData.UnitAmount)
	assert.Equal(t, "eur", *first.PriceData.Currency)
	assert.Equal(t, productID.String(), first.PriceData.ProductData.Metadata["product_id"])
	assert.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Nil(t, params.LineItems[1].PriceData.ProductData.Metadata)

	assert.Equal(t, "cus_1", *params.Customer)
	assert.Nil(t, params.CustomerEmail)
	require.NotNil(t, params.CustomerUpdate)
	assert.Equal(t, map[string]string{"user_id": "42", "promo_code": "SAVE10", "discount_percent": "10"}, params.Metadata)

	req.CustomerID = ""
	req.CustomerEmail = "guest@example.com"
	params = sessionParams(req)
	assert.Nil(t, params.Customer)
	assert.Equal(t, "guest@example.com", *params.CustomerEmail)
}
