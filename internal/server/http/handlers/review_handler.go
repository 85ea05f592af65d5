package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// ReviewHandler serves product reviews.
type ReviewHandler struct {
	facade ReviewFacade
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(facade ReviewFacade) *ReviewHandler {
	return &ReviewHandler{facade: facade}
}

// List handles GET /api/products/:product/reviews.
func (h *ReviewHandler) List(c *gin.Context) {
	productID, ok := uuidParam(c, "product")
	if !ok {
		return
	}
	rating := 0
	if raw := c.Query("rating"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "Valoración no válida")
			return
		}
		rating = n
	}

	reviews, stats, err := h.facade.Reviews(c.Request.Context(), productID, model.ParseReviewSort(c.Query("sort")), rating)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.ReviewListResponse{Reviews: make([]dto.ReviewResponse, 0, len(reviews)), Stats: toReviewStats(stats)}
	for _, r := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Upsert handles POST /api/reviews.
func (h *ReviewHandler) Upsert(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Producto no válido")
		return
	}

	review, created, err := h.facade.UpsertReview(c.Request.Context(), CurrentUserID(c), productID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toReviewResponse(*review))
}

// Delete handles DELETE /api/reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteReview(c.Request.Context(), CurrentRequester(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
