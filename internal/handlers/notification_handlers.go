package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /api/notifications
// It returns the most recent notifications, newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	limit := notifications.MaxList
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	list, err := h.Notifications.ListRecent(c.Request.Context(), userID(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetUnreadCount is the handler for GET /api/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	n, err := h.Notifications.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

type CreateNotificationInput struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Icon    string `json:"icon"`
}

// CreateNotification is the handler for POST /api/notifications
func (h *Handlers) CreateNotification(c *gin.Context) {
	var input CreateNotificationInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.Notifications.Add(c.Request.Context(), userID(c), input.Title, input.Message, input.Type, input.Icon)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// MarkNotificationAsRead is the handler for PUT /api/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.Notifications.MarkRead(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// MarkAllNotificationsRead is the handler for PUT /api/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}

// DeleteNotification is the handler for DELETE /api/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Notifications.Delete(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// ClearNotifications is the handler for DELETE /api/notifications
func (h *Handlers) ClearNotifications(c *gin.Context) {
	n, err := h.Notifications.ClearAll(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications cleared", "deleted": n})
}

// StreamNotifications is the handler for GET /api/notifications/stream
// It upgrades to a websocket and pushes new notifications as JSON frames.
func (h *Handlers) StreamNotifications(c *gin.Context) {
	id := userID(c)
	if err := h.Hub.Serve(c.Writer, c.Request, id); err != nil {
		// The upgrader has already answered the client.
		h.Log.DebugContext(c.Request.Context(), "websocket upgrade failed", "user_id", id, "error", err)
	}
}
