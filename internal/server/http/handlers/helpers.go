package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentRequester describes the caller for ownership checks.
func CurrentRequester(c *gin.Context) usecase.Requester {
	return usecase.Requester{UserID: CurrentUserID(c), Admin: c.GetBool(middleware.AdminContextKey)}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Identificador inválido")
		return uuid.Nil, false
	}
	return id, true
}

func jsonError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func badJSON(c *gin.Context) {
	jsonError(c, http.StatusBadRequest, "JSON inválido")
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		jsonError(c, http.StatusNotFound, "No encontrado")
	case errors.Is(err, domainErrors.ErrForbidden):
		jsonError(c, http.StatusForbidden, "No autorizado")
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		jsonError(c, http.StatusBadRequest, "Ya existe")
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		jsonError(c, http.StatusBadRequest, "Cambio de estado no permitido")
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		jsonError(c, http.StatusBadRequest, "Stock insuficiente")
	case errors.Is(err, domainErrors.ErrEmptyCart):
		jsonError(c, http.StatusBadRequest, "El carrito está vacío")
	case errors.Is(err, domainErrors.ErrPromoInvalid):
		jsonError(c, http.StatusBadRequest, "Código promocional no válido")
	case errors.Is(err, domainErrors.ErrPromoExpired):
		jsonError(c, http.StatusBadRequest, "Código promocional expirado")
	case errors.Is(err, domainErrors.ErrPromoExhausted):
		jsonError(c, http.StatusBadRequest, "Código promocional agotado")
	case errors.Is(err, domainErrors.ErrInvalidInput), errors.Is(err, domainErrors.ErrInvalidCredentials):
		jsonError(c, http.StatusBadRequest, "Datos no válidos")
	case errors.Is(err, domainErrors.ErrPaymentNotFound):
		jsonError(c, http.StatusBadRequest, "Pago no encontrado")
	default:
		jsonError(c, http.StatusInternalServerError, "Error interno del servidor")
	}
}
