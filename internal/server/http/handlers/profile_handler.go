package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// ProfileHandler exposes the caller's account and checkout contact data.
type ProfileHandler struct {
	facade ProfileFacade
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(facade ProfileFacade) *ProfileHandler {
	return &ProfileHandler{facade: facade}
}

// Me handles GET /api/profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	user, err := h.facade.User(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if err := h.facade.UpdateProfile(c.Request.Context(), CurrentUserID(c), req.FullName, req.Phone, toAddress(req.Address)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CustomerData handles GET /api/profile/customer-data.
func (h *ProfileHandler) CustomerData(c *gin.Context) {
	profile, err := h.facade.CustomerData(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CustomerDataResponse{
		Name:    profile.Name,
		Email:   profile.Email,
		Phone:   profile.Phone,
		Address: fromAddress(profile.Address),
	})
}
