package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/metrics"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func TestEnsureOrderCreatesOrderFromSession(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_123")
	f.payments.AddSession(session, items...)

	id, err := f.reconcile.EnsureOrder(context.Background(), "cs_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := f.orders.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if order.Total != 36 || order.DiscountAmount != 4 {
		t.Fatalf("unexpected totals: total=%v discount=%v", order.Total, order.DiscountAmount)
	}
	if order.Status != model.OrderStatusPaid || order.PromoCode != "PROMO10" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.PaymentIntentID != "pi_cs_123" || order.StripeSessionID != "cs_123" {
		t.Fatalf("payment linkage missing: %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	prices := map[uuid.UUID]float64{}
	for _, item := range order.Items {
		prices[item.ProductID] = item.Price
	}
	if prices[kibbleID] != 9 || prices[toyID] != 18 {
		t.Fatalf("unexpected unit prices: %v", prices)
	}
	if f.products.Stock(kibbleID) != 18 || f.products.Stock(toyID) != 19 {
		t.Fatalf("stock not reserved: %d %d", f.products.Stock(kibbleID), f.products.Stock(toyID))
	}

	owner, err := f.users.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("guest not created: %v", err)
	}
	if !owner.IsGuest() || owner.ID != order.UserID || owner.FullName != "Ana Ruiz" {
		t.Fatalf("unexpected owner: %+v", owner)
	}

	invoices := f.invoices.All()
	if len(invoices) != 1 {
		t.Fatalf("expected one invoice, got %d", len(invoices))
	}
	inv := invoices[0]
	if inv.Number != "FAC-2026-000001" || inv.Type != model.InvoiceTypeInvoice {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	if inv.Total != 36 || inv.Subtotal != 29.75 || inv.TaxAmount != 6.25 {
		t.Fatalf("unexpected invoice amounts: %+v", inv)
	}

	if f.mailer.ConfirmationCount() != 1 {
		t.Fatalf("expected one confirmation email, got %d", f.mailer.ConfirmationCount())
	}
	mail := f.mailer.Confirmations[0]
	if mail.Subtotal != 40 || mail.Discount != 4 || mail.Total != 36 || mail.To != "Ana@Example.com" {
		t.Fatalf("unexpected confirmation: %+v", mail)
	}
	if mail.ShippingAddress != "Ana Ruiz, Calle Mayor 1, 28013 Madrid, ES" {
		t.Fatalf("unexpected shipping line %q", mail.ShippingAddress)
	}
	if len(f.promos.Increments) != 1 || f.promos.Increments[0] != "PROMO10" {
		t.Fatalf("promo usage not recorded: %v", f.promos.Increments)
	}
	if f.payments.RefundCount() != 0 {
		t.Fatalf("unexpected refund")
	}
	if f.observer.Outcome(metrics.OutcomeCreated) != 1 {
		t.Fatalf("created outcome not observed: %v", f.observer.Outcomes)
	}
}

func TestEnsureOrderIsIdempotent(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_repeat")
	f.payments.AddSession(session, items...)

	first, err := f.reconcile.EnsureOrder(context.Background(), "cs_repeat")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := f.reconcile.EnsureOrder(context.Background(), "cs_repeat")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first != second {
		t.Fatalf("expected same order id, got %s and %s", first, second)
	}
	if f.orders.Count() != 1 || f.orders.CreateCalls != 1 {
		t.Fatalf("expected one order, got %d (%d creates)", f.orders.Count(), f.orders.CreateCalls)
	}
	if f.mailer.ConfirmationCount() != 1 || len(f.invoices.All()) != 1 {
		t.Fatalf("side effects repeated")
	}
	if f.payments.Retrieves != 1 {
		t.Fatalf("existing order should short-circuit before the processor, got %d retrieves", f.payments.Retrieves)
	}
	if f.observer.Outcome(metrics.OutcomeExisting) != 1 {
		t.Fatalf("existing outcome not observed")
	}
}

func TestEnsureOrderConcurrentCallsCreateOneOrder(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_race")
	f.payments.AddSession(session, items...)

	var arrived sync.WaitGroup
	arrived.Add(2)
	f.orders.CreateHook = func(model.NewOrder) {
		arrived.Done()
		arrived.Wait()
	}

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = f.reconcile.EnsureOrder(context.Background(), "cs_race")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
	if ids[0] != ids[1] {
		t.Fatalf("callers saw different orders: %s %s", ids[0], ids[1])
	}
	if f.orders.Count() != 1 {
		t.Fatalf("expected one order, got %d", f.orders.Count())
	}
	if f.payments.RefundCount() != 0 {
		t.Fatalf("losing caller must not refund")
	}
	if f.mailer.ConfirmationCount() != 1 {
		t.Fatalf("expected one confirmation, got %d", f.mailer.ConfirmationCount())
	}
	if f.products.Stock(kibbleID) != 18 {
		t.Fatalf("stock reserved twice: %d", f.products.Stock(kibbleID))
	}
	if f.observer.Outcome(metrics.OutcomeDuplicate) != 1 {
		t.Fatalf("duplicate outcome not observed: %v", f.observer.Outcomes)
	}
}

func TestEnsureOrderRejectsUnpaidSession(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_unpaid")
	session.PaymentStatus = model.PaymentStatusUnpaid
	f.payments.AddSession(session, items...)

	_, err := f.reconcile.EnsureOrder(context.Background(), "cs_unpaid")
	if !errors.Is(err, domainErrors.ErrSessionNotPaid) {
		t.Fatalf("expected session not paid, got %v", err)
	}
	if f.orders.Count() != 0 || f.payments.RefundCount() != 0 {
		t.Fatalf("unpaid session must not create or refund")
	}
}

func TestEnsureOrderEmptySessionID(t *testing.T) {
	f := newStoreFixture()
	if _, err := f.reconcile.EnsureOrder(context.Background(), "  "); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestEnsureOrderUnresolvedItemsRefund(t *testing.T) {
	cases := []struct {
		name  string
		items []model.LineItem
	}{
		{"unknown product", []model.LineItem{
			{Description: "Pienso Salmón", Quantity: 1, AmountTotal: 900, ProductID: kibbleID.String()},
			{Description: "Producto retirado", Quantity: 1, AmountTotal: 1000},
		}},
		{"only shipping", []model.LineItem{
			{Description: model.ShippingLineDescription, Quantity: 1, AmountTotal: 499},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newStoreFixture()
			session, _ := paidSession("cs_bad")
			f.payments.AddSession(session, tc.items...)

			_, err := f.reconcile.EnsureOrder(context.Background(), "cs_bad")
			if !errors.Is(err, domainErrors.ErrUnresolvedLineItems) {
				t.Fatalf("expected unresolved items, got %v", err)
			}
			if f.orders.Count() != 0 {
				t.Fatalf("order must not be created")
			}
			if len(f.payments.Refunds) != 1 || f.payments.Refunds[0] != "pi_cs_bad" {
				t.Fatalf("expected full refund, got %v", f.payments.Refunds)
			}
			if f.observer.Refunds["unresolved_items"] != 1 {
				t.Fatalf("refund not observed: %v", f.observer.Refunds)
			}
		})
	}
}

func TestEnsureOrderCreationFailureRefunds(t *testing.T) {
	t.Run("storage error", func(t *testing.T) {
		f := newStoreFixture()
		session, items := paidSession("cs_fail")
		f.payments.AddSession(session, items...)
		f.orders.CreateErr = errors.New("connection reset")

		_, err := f.reconcile.EnsureOrder(context.Background(), "cs_fail")
		if !errors.Is(err, domainErrors.ErrOrderCreation) {
			t.Fatalf("expected order creation error, got %v", err)
		}
		if f.payments.RefundCount() != 1 {
			t.Fatalf("expected refund after failed creation")
		}
		if f.mailer.ConfirmationCount() != 0 || len(f.invoices.All()) != 0 {
			t.Fatalf("no side effects expected")
		}
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newStoreFixture()
		session, items := paidSession("cs_stock")
		items[0].Quantity = 50
		f.payments.AddSession(session, items...)

		_, err := f.reconcile.EnsureOrder(context.Background(), "cs_stock")
		if !errors.Is(err, domainErrors.ErrOrderCreation) {
			t.Fatalf("expected order creation error, got %v", err)
		}
		if f.payments.RefundCount() != 1 || f.products.Stock(kibbleID) != 20 {
			t.Fatalf("expected refund and untouched stock")
		}
	})
}

func TestEnsureOrderLineItemErrorDoesNotRefund(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_flaky")
	f.payments.AddSession(session, items...)
	f.payments.LineErr = errors.New("timeout")

	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_flaky"); err == nil {
		t.Fatalf("expected error")
	}
	if f.payments.RefundCount() != 0 {
		t.Fatalf("transient failures must be retried, not refunded")
	}
}

func TestEnsureOrderOwnerResolution(t *testing.T) {
	t.Run("metadata user", func(t *testing.T) {
		f := newStoreFixture()
		user := f.users.Add(model.User{Email: "luis@example.com", PasswordHash: "x"})
		session, items := paidSession("cs_meta")
		session.Metadata.UserID = "1"
		f.payments.AddSession(session, items...)

		id, err := f.reconcile.EnsureOrder(context.Background(), "cs_meta")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order, _ := f.orders.GetByID(context.Background(), id)
		if order.UserID != user.ID || f.users.Guests != 0 {
			t.Fatalf("order should belong to metadata user")
		}
	})

	t.Run("unknown metadata user falls back to email", func(t *testing.T) {
		f := newStoreFixture()
		existing := f.users.Add(model.User{Email: "ana@example.com", PasswordHash: "x"})
		session, items := paidSession("cs_stale")
		session.Metadata.UserID = "999"
		f.payments.AddSession(session, items...)

		id, err := f.reconcile.EnsureOrder(context.Background(), "cs_stale")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order, _ := f.orders.GetByID(context.Background(), id)
		if order.UserID != existing.ID {
			t.Fatalf("expected email owner %d, got %d", existing.ID, order.UserID)
		}
	})

	t.Run("guest reused across sessions", func(t *testing.T) {
		f := newStoreFixture()
		for _, id := range []string{"cs_g1", "cs_g2"} {
			session, items := paidSession(id)
			f.payments.AddSession(session, items...)
			if _, err := f.reconcile.EnsureOrder(context.Background(), id); err != nil {
				t.Fatalf("%s: %v", id, err)
			}
		}
		if f.users.Guests != 1 || f.users.Count() != 1 {
			t.Fatalf("expected a single guest, got %d guests %d users", f.users.Guests, f.users.Count())
		}
	})

	t.Run("no email", func(t *testing.T) {
		f := newStoreFixture()
		session, items := paidSession("cs_anon")
		session.Customer = model.CustomerDetails{}
		f.payments.AddSession(session, items...)

		_, err := f.reconcile.EnsureOrder(context.Background(), "cs_anon")
		if !errors.Is(err, domainErrors.ErrOwnerUnresolved) {
			t.Fatalf("expected owner unresolved, got %v", err)
		}
		if f.orders.Count() != 0 {
			t.Fatalf("order must not be created")
		}
	})
}

func TestEnsureOrderBestEffortStepsDoNotFail(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_degraded")
	f.payments.AddSession(session, items...)
	f.mailer.Err = errors.New("smtp down")
	f.invoices.CreateErr = errors.New("invoice table locked")
	f.promos.IncrementErr = errors.New("promo gone")
	f.orders.LinkErr = errors.New("update failed")

	id, err := f.reconcile.EnsureOrder(context.Background(), "cs_degraded")
	if err != nil {
		t.Fatalf("best-effort failures must not fail reconciliation: %v", err)
	}
	if id == uuid.Nil || f.orders.Count() != 1 {
		t.Fatalf("order should exist")
	}
	if f.payments.RefundCount() != 0 {
		t.Fatalf("no refund expected")
	}
	for _, step := range []string{stepLinkage, stepInvoice, stepPromoUsage, stepConfirmation} {
		if f.observer.Steps[step] != 1 {
			t.Fatalf("step %s failure not observed: %v", step, f.observer.Steps)
		}
	}
}

func TestEnsureOrderSyncsCustomer(t *testing.T) {
	f := newStoreFixture()
	f.customers.Customers["cus_9"] = model.CustomerProfile{Email: "ana@example.com"}
	user := f.users.Add(model.User{Email: "ana@example.com", PasswordHash: "x", StripeCustomerID: "cus_9"})
	session, items := paidSession("cs_sync")
	session.CustomerID = "cus_9"
	session.Customer.Phone = "+34600000000"
	f.payments.AddSession(session, items...)

	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_sync"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remote := f.customers.Customers["cus_9"]
	if remote.Phone != "+34600000000" || remote.Address.City != "Madrid" {
		t.Fatalf("customer not updated: %+v", remote)
	}
	local, _ := f.users.GetByID(context.Background(), user.ID)
	if local.FullName != "Ana Ruiz" || local.Address.PostalCode != "28013" {
		t.Fatalf("local profile not updated: %+v", local)
	}
}

func TestReconstructDiscount(t *testing.T) {
	cases := []struct {
		name       string
		discounted string
		pct        int
		before     string
		discount   string
	}{
		{"ten percent", "45", 10, "50", "5"},
		{"no discount", "45", 0, "45", "0"},
		{"full discount ignored", "45", 100, "45", "0"},
		{"rounding", "33.33", 15, "39.2117647058823529", "5.88"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, discount := reconstructDiscount(decimal.RequireFromString(tc.discounted), tc.pct)
			if !discount.Equal(decimal.RequireFromString(tc.discount)) {
				t.Fatalf("discount = %s, want %s", discount, tc.discount)
			}
			if !before.Round(2).Equal(decimal.RequireFromString(tc.before).Round(2)) {
				t.Fatalf("before = %s, want %s", before, tc.before)
			}
		})
	}
}

func TestEnsureOrderRefundedSessionIsNeverReordered(t *testing.T) {
	f := newStoreFixture()
	sessionID := testhelpers.RandomSessionID()
	session, items := paidSession(sessionID)
	f.payments.AddSession(session, items...)
	f.products.SetStock(kibbleID, 1)

	_, err := f.reconcile.EnsureOrder(context.Background(), sessionID)
	if !errors.Is(err, domainErrors.ErrOrderCreation) {
		t.Fatalf("expected order creation error, got %v", err)
	}
	if f.payments.RefundCount() != 1 {
		t.Fatalf("expected a compensating refund, got %v", f.payments.Refunds)
	}

	f.products.SetStock(kibbleID, 20)
	for range 2 {
		_, err = f.reconcile.EnsureOrder(context.Background(), sessionID)
		if !errors.Is(err, domainErrors.ErrSessionRefunded) || !errors.Is(err, domainErrors.ErrOrderCreation) {
			t.Fatalf("expected refunded session error, got %v", err)
		}
	}
	if f.orders.Count() != 0 || f.payments.RefundCount() != 1 {
		t.Fatalf("refunded session reordered: orders=%d refunds=%d", f.orders.Count(), f.payments.RefundCount())
	}
	if f.mailer.ConfirmationCount() != 0 || len(f.invoices.All()) != 0 || f.products.Stock(kibbleID) != 20 {
		t.Fatalf("refunded session must have no side effects")
	}
	if f.observer.Outcome(metrics.OutcomeRefunded) != 2 {
		t.Fatalf("expected refunded outcomes, got %v", f.observer.Outcomes)
	}
}

func TestEnsureOrderUnresolvedSessionStaysRefunded(t *testing.T) {
	f := newStoreFixture()
	session, _ := paidSession("cs_retired")
	f.payments.AddSession(session, model.LineItem{Description: "Rascador Retirado", Quantity: 1, AmountTotal: 3600})

	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_retired"); !errors.Is(err, domainErrors.ErrUnresolvedLineItems) {
		t.Fatalf("expected unresolved items, got %v", err)
	}
	if _, err := f.products.Create(context.Background(), model.Product{Name: "Rascador Retirado", Price: 36, Stock: 3}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	_, err := f.reconcile.EnsureOrder(context.Background(), "cs_retired")
	if !errors.Is(err, domainErrors.ErrSessionRefunded) || !errors.Is(err, domainErrors.ErrUnresolvedLineItems) {
		t.Fatalf("expected refunded session error, got %v", err)
	}
	if f.orders.Count() != 0 || f.payments.RefundCount() != 1 {
		t.Fatalf("unexpected orders=%d refunds=%d", f.orders.Count(), f.payments.RefundCount())
	}
}

func TestEnsureOrderFailedRefundIsRetried(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_retry")
	f.payments.AddSession(session, items...)
	f.products.SetStock(kibbleID, 1)
	f.payments.RefundErr = errors.New("processor unavailable")

	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_retry"); !errors.Is(err, domainErrors.ErrOrderCreation) {
		t.Fatalf("expected order creation error, got %v", err)
	}
	if len(f.orders.Compensations) != 0 {
		t.Fatalf("a failed refund must not be recorded as compensated")
	}

	// The charge still stands, so a later pass may fulfil it.
	f.payments.RefundErr = nil
	f.products.SetStock(kibbleID, 20)
	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_retry"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.orders.Count() != 1 {
		t.Fatalf("expected the order on retry")
	}
}

func TestEnsureOrderCompensationRecordFailureIsObserved(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_norecord")
	f.payments.AddSession(session, items...)
	f.orders.CreateErr = errors.New("connection reset")
	f.orders.CompensationErr = errors.New("connection reset")

	if _, err := f.reconcile.EnsureOrder(context.Background(), "cs_norecord"); !errors.Is(err, domainErrors.ErrOrderCreation) {
		t.Fatalf("expected order creation error, got %v", err)
	}
	if f.observer.Steps[stepCompensation] != 1 {
		t.Fatalf("expected compensation step failure, got %v", f.observer.Steps)
	}
}

func TestEnsureOrderSkipsSessionRefundedAtProcessor(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_disputed")
	session.Refunded = true
	f.payments.AddSession(session, items...)

	_, err := f.reconcile.EnsureOrder(context.Background(), "cs_disputed")
	if !errors.Is(err, domainErrors.ErrSessionRefunded) {
		t.Fatalf("expected refunded session, got %v", err)
	}
	if f.orders.Count() != 0 || f.payments.RefundCount() != 0 {
		t.Fatalf("no order and no second refund expected")
	}
}

func TestEnsureOrderSurvivesCallerCancellation(t *testing.T) {
	f := newStoreFixture()
	session, items := paidSession("cs_hangup")
	f.payments.AddSession(session, items...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orders.CreateHook = func(model.NewOrder) { cancel() }

	id, err := f.reconcile.EnsureOrder(ctx, "cs_hangup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("caller context should be cancelled by now")
	}
	order, err := f.orders.GetByID(context.Background(), id)
	if err != nil || order.PaymentIntentID != "pi_cs_hangup" {
		t.Fatalf("linkage lost after cancellation: %+v (%v)", order, err)
	}
	if len(f.invoices.All()) != 1 || f.mailer.ConfirmationCount() != 1 {
		t.Fatalf("invoice and confirmation must survive cancellation: invoices=%d emails=%d",
			len(f.invoices.All()), f.mailer.ConfirmationCount())
	}
	for _, step := range []string{stepLinkage, stepInvoice, stepConfirmation} {
		if f.observer.Steps[step] != 0 {
			t.Fatalf("step %s failed after cancellation: %v", step, f.observer.Steps)
		}
	}
}
