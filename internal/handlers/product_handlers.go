package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Product Handlers (Public) ---
//

// GetProducts is the handler for GET /api/products
// Query: category, search, sort, limit, offset.
func (h *Handlers) GetProducts(c *gin.Context) {
	f := models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     models.ProductSort(c.Query("sort")),
	}
	// Bad numbers fall back to the defaults rather than failing the page.
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		f.Offset = v
	}

	page, err := h.Catalog.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct is the handler for GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetCategories is the handler for GET /api/products/meta/categories
func (h *Handlers) GetCategories(c *gin.Context) {
	cats, err := h.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// GetDeals is the handler for GET /api/products/meta/deals
func (h *Handlers) GetDeals(c *gin.Context) {
	deals, err := h.Catalog.Deals(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

// GetFeatured is the handler for GET /api/products/meta/featured
func (h *Handlers) GetFeatured(c *gin.Context) {
	featured, err := h.Catalog.Featured(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, featured)
}
