package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/gin-gonic/gin"
)

//
// --- Order Handlers ---
//

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlaceOrderInput defines the JSON for checkout.
type PlaceOrderInput struct {
	Items           []models.OrderLine     `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
}

// PlaceOrder is the handler for POST /api/orders
// The whole placement runs as one transaction; see orders.Service.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	// 1. --- Parse Input ---
	var input PlaceOrderInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	// 2. --- Place ---
	placement, err := h.Orders.PlaceOrder(c.Request.Context(), orders.PlaceOrderInput{
		UserID:          userID(c),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Lines:           input.Items,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. --- Success ---
	c.JSON(http.StatusCreated, placement)
}

// GetMyOrders is the handler for GET /api/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	list, err := h.Orders.List(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetOrderDetails is the handler for GET /api/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	orderID, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	placement, err := h.Orders.Get(c.Request.Context(), userID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, placement)
}

type UpdateOrderStatusInput struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PUT /api/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input UpdateOrderStatusInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), userID(c), orderID, input.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// ExportOrders is the handler for GET /api/orders/export
// It streams the user's order history as an .xlsx attachment.
func (h *Handlers) ExportOrders(c *gin.Context) {
	id := userID(c)
	file, err := h.Orders.Export(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, orders.ExportFilename(id)))
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		// Headers are already sent; all that is left is to log.
		h.Log.ErrorContext(c.Request.Context(), "order export write failed", "user_id", id, "error", err)
	}
}
