package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func TestSanitizeSearch(t *testing.T) {
	cases := map[string]string{
		"  pienso  ":          "pienso",
		"50% off_":            "50 off",
		`'; DROP TABLE x; --`: "DROP TABLE x",
		`a\b/c*d"e`:           "abcde",
		"":                    "",
	}
	for in, want := range cases {
		require.Equal(t, want, SanitizeSearch(in), "input %q", in)
	}

	long := make([]rune, 150)
	for i := range long {
		long[i] = 'a'
	}
	require.Len(t, SanitizeSearch(string(long)), maxSearchLength)
}

func TestCatalogSearch(t *testing.T) {
	f := newStoreFixture()
	uc := NewCatalogUseCase(f.products)

	found, err := uc.Search(context.Background(), "pienso%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, kibbleID, found[0].ID)

	short, err := uc.Search(context.Background(), "%p%")
	require.NoError(t, err)
	require.Empty(t, short)
}

func TestCatalogCreateDerivesSlug(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub()
	uc := NewCatalogUseCase(products)

	created, err := uc.Create(context.Background(), ProductInput{Name: " Arnés Perro Pequeño ", Price: 15.5, Stock: 3})
	require.NoError(t, err)
	require.Equal(t, "arnes-perro-pequeno", created.Slug)
	require.Equal(t, "Arnés Perro Pequeño", created.Name)

	custom, err := uc.Create(context.Background(), ProductInput{Name: "Otro", Slug: "Mi Slug", Price: 1})
	require.NoError(t, err)
	require.Equal(t, "mi-slug", custom.Slug)
}

func TestCatalogValidation(t *testing.T) {
	uc := NewCatalogUseCase(testhelpers.NewProductRepositoryStub())
	bad := 30.0
	for name, in := range map[string]ProductInput{
		"no name":        {Price: 1},
		"zero price":     {Name: "x"},
		"negative stock": {Name: "x", Price: 1, Stock: -1},
		"sale too high":  {Name: "x", Price: 20, OnSale: true, SalePrice: &bad},
		"sale no price":  {Name: "x", Price: 20, OnSale: true},
	} {
		_, err := uc.Create(context.Background(), in)
		require.ErrorIs(t, err, domainErrors.ErrInvalidInput, name)
	}
}

func TestCatalogSetSale(t *testing.T) {
	f := newStoreFixture()
	uc := NewCatalogUseCase(f.products)

	price := 7.5
	require.NoError(t, uc.SetSale(context.Background(), kibbleID, true, &price))
	product, err := uc.GetByID(context.Background(), kibbleID)
	require.NoError(t, err)
	require.True(t, product.OnSale)
	require.Equal(t, 7.5, product.EffectivePrice())

	tooHigh := 10.0
	require.ErrorIs(t, uc.SetSale(context.Background(), kibbleID, true, &tooHigh), domainErrors.ErrInvalidInput)

	require.NoError(t, uc.SetSale(context.Background(), kibbleID, false, &price))
	product, _ = uc.GetByID(context.Background(), kibbleID)
	require.False(t, product.OnSale)
	require.Nil(t, product.SalePrice)
}

func TestCatalogGetBySlug(t *testing.T) {
	f := newStoreFixture()
	uc := NewCatalogUseCase(f.products)

	product, err := uc.GetBySlug(context.Background(), "pelota-mordedor")
	require.NoError(t, err)
	require.Equal(t, toyID, product.ID)

	_, err = uc.GetBySlug(context.Background(), " ")
	require.True(t, errors.Is(err, domainErrors.ErrNotFound))
}

func TestPromoValidate(t *testing.T) {
	expired := fixedNow.Add(-time.Minute)
	later := fixedNow.Add(time.Hour)
	one := 1
	promos := testhelpers.NewPromoCodeRepositoryStub(
		model.PromoCode{Code: "VERANO", DiscountPercentage: 15, Active: true, ExpiresAt: &later},
		model.PromoCode{Code: "OFF", DiscountPercentage: 15},
		model.PromoCode{Code: "OLD", DiscountPercentage: 15, Active: true, ExpiresAt: &expired},
		model.PromoCode{Code: "ONCE", DiscountPercentage: 15, Active: true, MaxUses: &one, CurrentUses: 1},
	)
	uc := NewPromoUseCase(promos)
	uc.now = func() time.Time { return fixedNow }

	promo, err := uc.Validate(context.Background(), " verano ")
	require.NoError(t, err)
	require.Equal(t, 15, promo.DiscountPercentage)

	for code, want := range map[string]error{
		"":        domainErrors.ErrPromoInvalid,
		"MISSING": domainErrors.ErrPromoInvalid,
		"OFF":     domainErrors.ErrPromoInvalid,
		"OLD":     domainErrors.ErrPromoExpired,
		"ONCE":    domainErrors.ErrPromoExhausted,
	} {
		_, err := uc.Validate(context.Background(), code)
		require.ErrorIs(t, err, want, code)
	}
}

func TestPromoCreate(t *testing.T) {
	uc := NewPromoUseCase(testhelpers.NewPromoCodeRepositoryStub())

	created, err := uc.Create(context.Background(), NewPromoCode{Code: "navidad", DiscountPercentage: 20})
	require.NoError(t, err)
	require.Equal(t, "NAVIDAD", created.Code)
	require.True(t, created.Active)

	_, err = uc.Create(context.Background(), NewPromoCode{Code: "NAVIDAD", DiscountPercentage: 20})
	require.ErrorIs(t, err, domainErrors.ErrAlreadyExists)

	zero := 0
	for name, in := range map[string]NewPromoCode{
		"empty":    {DiscountPercentage: 10},
		"too long": {Code: strings.Repeat("X", 51), DiscountPercentage: 10},
		"zero":     {Code: "A", DiscountPercentage: 0},
		"over 100": {Code: "A", DiscountPercentage: 101},
		"max uses": {Code: "A", DiscountPercentage: 10, MaxUses: &zero},
	} {
		_, err := uc.Create(context.Background(), in)
		require.ErrorIs(t, err, domainErrors.ErrInvalidInput, name)
	}
}
