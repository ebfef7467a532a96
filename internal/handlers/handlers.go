package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/01moynul/storefront-golang/internal/ai"
	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/01moynul/storefront-golang/internal/users"
	"github.com/01moynul/storefront-golang/internal/wishlist"
	"github.com/gin-gonic/gin"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Catalog       *catalog.Service
	Cart          *cart.Service
	Wishlist      *wishlist.Service
	Orders        *orders.Service
	Notifications *notifications.Service
	Users         *users.Service
	Hub           *notifications.Hub
	Assistant     *ai.Assistant // nil when no API key is configured
	Config        config.Config
	Log           *slog.Logger

	// Ping reports whether the backing store is reachable. Nil means the
	// store has nothing to ping.
	Ping func(ctx context.Context) error
}

// respondError writes {"error": msg} with the status of err's kind and
// logs the internal cause for server-side failures.
func (h *Handlers) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	attrs := []any{
		"request_id", middleware.RequestID(c),
		"route", c.FullPath(),
		"kind", kind.String(),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		h.Log.ErrorContext(c.Request.Context(), "request failed", attrs...)
	} else {
		h.Log.DebugContext(c.Request.Context(), "request rejected", attrs...)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// userID returns the authenticated user set by AuthMiddleware.
func userID(c *gin.Context) int64 {
	id, _ := middleware.UserID(c)
	return id
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return id, nil
}

// bindJSON decodes the body or reports a validation error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// Health is the handler for GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			h.Log.WarnContext(ctx, "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"store":     h.Config.StoreDriver,
		"timestamp": time.Now().UTC(),
	})
}
