package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CatalogHandler serves product listings and search.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// List handles GET /api/products.
func (h *CatalogHandler) List(c *gin.Context) {
	filter := model.ProductFilter{
		AnimalType: c.Query("animal"),
		Category:   c.Query("category"),
	}
	filter.OnSale, _ = strconv.ParseBool(c.Query("on_sale"))

	products, err := h.facade.Products(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// Get handles GET /api/products/:product where product is a slug.
func (h *CatalogHandler) Get(c *gin.Context) {
	product, err := h.facade.ProductBySlug(c.Request.Context(), c.Param("product"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}

// Search handles GET /api/search?q=.
func (h *CatalogHandler) Search(c *gin.Context) {
	products, err := h.facade.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}
