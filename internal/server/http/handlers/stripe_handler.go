package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBody = 65536

// WebhookObserver counts processed webhook events.
type WebhookObserver interface {
	WebhookEvent(eventType string)
}

// StripeHandler receives signed processor events.
type StripeHandler struct {
	facade   CheckoutFacade
	secret   string
	observer WebhookObserver
	logger   *slog.Logger
}

// NewStripeHandler constructs StripeHandler. An empty secret makes every
// signed request fail with 500.
func NewStripeHandler(facade CheckoutFacade, secret string, observer WebhookObserver, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{facade: facade, secret: secret, observer: observer, logger: logger}
}

// Webhook handles POST /api/stripe/webhook.
func (h *StripeHandler) Webhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		jsonError(c, http.StatusBadRequest, "No signature")
		return
	}
	if h.secret == "" {
		h.logger.Error("stripe webhook secret is not configured")
		jsonError(c, http.StatusInternalServerError, "Webhook no configurado")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Error de verificación del webhook")
		return
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.logger.Warn("stripe webhook signature rejected", slog.String("error", err.Error()))
		jsonError(c, http.StatusBadRequest, "Error de verificación del webhook")
		return
	}

	if h.observer != nil {
		h.observer.WebhookEvent(string(event.Type))
	}
	logger := h.logger.With(slog.String("event_id", event.ID), slog.String("event_type", string(event.Type)))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		h.checkoutCompleted(c, logger, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err == nil {
			logger = logger.With(slog.String("payment_intent", intent.ID))
		}
		logger.Warn("payment failed")
	default:
		logger.Info("unhandled stripe event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *StripeHandler) checkoutCompleted(c *gin.Context, logger *slog.Logger, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil || session.ID == "" {
		logger.Error("checkout session payload unreadable")
		return
	}
	logger = logger.With(slog.String("session_id", session.ID))

	orderID, err := h.facade.EnsureOrder(c.Request.Context(), session.ID)
	if err != nil {
		logger.Error("order not created from webhook", slog.String("error", err.Error()))
		return
	}
	logger.Info("order processed", slog.String("order_id", orderID.String()))
}
