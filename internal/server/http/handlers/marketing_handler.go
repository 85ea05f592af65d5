package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// MarketingHandler serves the newsletter and contact forms.
type MarketingHandler struct {
	facade MarketingFacade
}

// NewMarketingHandler constructs MarketingHandler.
func NewMarketingHandler(facade MarketingFacade) *MarketingHandler {
	return &MarketingHandler{facade: facade}
}

// Subscribe handles POST /api/newsletter.
func (h *MarketingHandler) Subscribe(c *gin.Context) {
	var req dto.NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	code, err := h.facade.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			jsonError(c, http.StatusBadRequest, "Este email ya está suscrito")
		case errors.Is(err, domainErrors.ErrInvalidInput):
			jsonError(c, http.StatusBadRequest, "Email no válido")
		default:
			respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, dto.NewsletterResponse{Message: "¡Gracias por suscribirte!", PromoCode: code})
}

// Contact handles POST /api/contact.
func (h *MarketingHandler) Contact(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	err := h.facade.Contact(c.Request.Context(), model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidInput) {
			jsonError(c, http.StatusBadRequest, "Nombre, email y mensaje son obligatorios")
			return
		}
		jsonError(c, http.StatusInternalServerError, "No se pudo enviar el mensaje")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
