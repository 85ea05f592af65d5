package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CheckoutHandler opens hosted checkouts and serves the post-payment pages.
type CheckoutHandler struct {
	facade CheckoutFacade
	logger *slog.Logger
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, logger: logger}
}

// CreateSession handles POST /api/checkout/session.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	items := make([]usecase.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.ID)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "Producto no válido")
			return
		}
		items = append(items, usecase.CartItem{ProductID: id, Quantity: it.Quantity})
	}

	session, err := h.facade.CreateCheckoutSession(c.Request.Context(), CurrentUserID(c), items, req.PromoCode)
	if err != nil {
		h.logger.Warn("checkout session not created", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// ValidatePromo handles POST /api/promo/validate.
func (h *CheckoutHandler) ValidatePromo(c *gin.Context) {
	var req dto.PromoValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	promo, err := h.facade.ValidatePromo(c.Request.Context(), req.Code)
	if err != nil {
		msg, known := promoErrorMessage(err)
		if !known {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.PromoValidateResponse{Valid: false, Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.PromoValidateResponse{Valid: true, DiscountPercentage: promo.DiscountPercentage})
}

// SuccessPage handles GET /checkout/success?session_id=.
func (h *CheckoutHandler) SuccessPage(c *gin.Context) {
	orderID, err := h.reconcile(c)
	if errors.Is(err, domainErrors.ErrSessionRefunded) {
		c.HTML(http.StatusOK, checkoutRefundedTemplate, gin.H{"Title": "Pago reembolsado"})
		return
	}
	if err != nil {
		c.HTML(http.StatusOK, checkoutProcessingTemplate, gin.H{"Title": "Procesando pago"})
		return
	}
	c.HTML(http.StatusOK, checkoutSuccessTemplate, gin.H{"Title": "Pedido confirmado", "OrderID": orderID.String()})
}

// Success handles GET /api/checkout/success?session_id=.
func (h *CheckoutHandler) Success(c *gin.Context) {
	orderID, err := h.reconcile(c)
	if errors.Is(err, domainErrors.ErrSessionRefunded) {
		jsonError(c, http.StatusConflict, "El pago ha sido reembolsado")
		return
	}
	if err != nil {
		jsonError(c, http.StatusConflict, "El pago se está procesando")
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutSuccessResponse{OrderID: orderID.String()})
}

func promoErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, domainErrors.ErrPromoExpired):
		return "Este código ha expirado", true
	case errors.Is(err, domainErrors.ErrPromoExhausted):
		return "Este código ha alcanzado su límite de usos", true
	case errors.Is(err, domainErrors.ErrPromoInvalid):
		return "Código no válido", true
	}
	return "", false
}

func (h *CheckoutHandler) reconcile(c *gin.Context) (uuid.UUID, error) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return uuid.Nil, domainErrors.ErrInvalidInput
	}
	id, err := h.facade.EnsureOrder(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("order not confirmed on success page",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return uuid.Nil, err
	}
	return id, nil
}
