package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

const (
	actionApprove = "aprobar"
	actionReject  = "rechazar"
)

// AdminHandler serves the back-office API. Routes are mounted behind AdminRequired.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	product, err := h.facade.CreateProduct(c.Request.Context(), toProductInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*product))
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	product, err := h.facade.UpdateProduct(c.Request.Context(), id, toProductInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}

// DeleteProduct handles DELETE /api/admin/products/:id.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSale handles POST /api/admin/products/:id/sale.
func (h *AdminHandler) SetSale(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := h.facade.SetProductSale(c.Request.Context(), id, req.OnSale, req.SalePrice); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Orders handles GET /api/admin/orders?status=&limit=.
func (h *AdminHandler) Orders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.facade.AdminOrders(c.Request.Context(), model.OrderStatus(c.Query("status")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// UpdateOrderStatus handles POST /api/admin/orders/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), id, usecase.StatusChange{
		Status:         model.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancellations handles GET /api/admin/cancellations?status=.
func (h *AdminHandler) Cancellations(c *gin.Context) {
	requests, err := h.facade.Cancellations(c.Request.Context(), model.CancellationStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.CancellationResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, toCancellationResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// DecideCancellation handles POST /api/admin/cancellations/:id.
func (h *AdminHandler) DecideCancellation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancellationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}

	var (
		resolved *model.CancellationRequest
		err      error
	)
	switch req.Action {
	case actionApprove:
		resolved, err = h.facade.ApproveCancellation(c.Request.Context(), id, req.AdminNotes)
	case actionReject:
		resolved, err = h.facade.RejectCancellation(c.Request.Context(), id, req.AdminNotes)
	default:
		jsonError(c, http.StatusBadRequest, "Acción no válida")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(*resolved))
}

// Returns handles GET /api/admin/returns?status=.
func (h *AdminHandler) Returns(c *gin.Context) {
	requests, err := h.facade.Returns(c.Request.Context(), model.ReturnStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.ReturnResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, toReturnResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateReturn handles POST /api/admin/returns/:id.
func (h *AdminHandler) UpdateReturn(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReturnUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	updated, err := h.facade.UpdateReturn(c.Request.Context(), id, usecase.ReturnUpdate{
		Status:       model.ReturnStatus(req.Status),
		RefundAmount: req.RefundAmount,
		AdminNotes:   req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReturnResponse(*updated))
}

// PromoCodes handles GET /api/admin/promo-codes.
func (h *AdminHandler) PromoCodes(c *gin.Context) {
	codes, err := h.facade.PromoCodes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.PromoCodeResponse, 0, len(codes))
	for _, p := range codes {
		resp = append(resp, toPromoResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePromoCode handles POST /api/admin/promo-codes.
func (h *AdminHandler) CreatePromoCode(c *gin.Context) {
	var req dto.PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	promo, err := h.facade.CreatePromoCode(c.Request.Context(), usecase.NewPromoCode{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		MaxUses:            req.MaxUses,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPromoResponse(*promo))
}

// DeletePromoCode handles DELETE /api/admin/promo-codes/:id.
func (h *AdminHandler) DeletePromoCode(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeletePromoCode(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toProductInput(req dto.ProductRequest) usecase.ProductInput {
	return usecase.ProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		OnSale:      req.OnSale,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Brand:       req.Brand,
		AnimalType:  req.AnimalType,
		Category:    req.Category,
	}
}
