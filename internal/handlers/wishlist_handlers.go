package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type WishlistInput struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// GetWishlist is the handler for GET /api/wishlist
func (h *Handlers) GetWishlist(c *gin.Context) {
	entries, err := h.Wishlist.List(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToWishlist is the handler for POST /api/wishlist
// Saving a product twice is not an error.
func (h *Handlers) AddToWishlist(c *gin.Context) {
	var input WishlistInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	added, err := h.Wishlist.Add(c.Request.Context(), userID(c), input.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !added {
		c.JSON(http.StatusOK, gin.H{"message": "Already in wishlist", "inWishlist": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Added to wishlist", "inWishlist": true})
}

// RemoveFromWishlist is the handler for DELETE /api/wishlist/:productId
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	productID, err := idParam(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Wishlist.Remove(c.Request.Context(), userID(c), productID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist", "inWishlist": false})
}

// ToggleWishlist is the handler for POST /api/wishlist/toggle
func (h *Handlers) ToggleWishlist(c *gin.Context) {
	var input WishlistInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	in, err := h.Wishlist.Toggle(c.Request.Context(), userID(c), input.ProductID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": in})
}
