package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (Signed-in users and guests) ---
//

// cartOwner prefers the signed-in user over a guest session.
func cartOwner(c *gin.Context) cart.Owner {
	if id, ok := middleware.UserID(c); ok {
		return cart.User(id)
	}
	return cart.Guest(middleware.Session(c))
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity"` // defaults to 1
}

// GetCart is the handler for GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.Cart.List(c.Request.Context(), cartOwner(c)))
}

// AddToCart is the handler for POST /api/cart
// A guest without a session is issued one in the X-Cart-Session header.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	owner := cartOwner(c)
	if !owner.Valid() {
		owner = cart.Guest(middleware.NewSession(c))
	}

	line, err := h.Cart.Add(c.Request.Context(), owner, input.ProductID, qty)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart", "item": line})
}

type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem is the handler for PUT /api/cart/:productId
// A quantity of zero or less removes the line.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	productID, err := idParam(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input UpdateCartItemInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	line, removed, err := h.Cart.SetQuantity(c.Request.Context(), cartOwner(c), productID, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if removed {
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "removed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "item": line})
}

// RemoveCartItem is the handler for DELETE /api/cart/:productId
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	productID, err := idParam(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Cart.Remove(c.Request.Context(), cartOwner(c), productID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart is the handler for DELETE /api/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), cartOwner(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// MergeCart is the handler for POST /api/cart/merge
// It folds the guest cart named by X-Cart-Session into the user's cart.
func (h *Handlers) MergeCart(c *gin.Context) {
	lines, err := h.Cart.Merge(c.Request.Context(), middleware.Session(c), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}
