package routes

import (
	"log/slog"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware tells the browser which frontends may call the API.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderCartSession, middleware.HeaderRequestID,
		},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderCartSession, middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// Credentials cannot be combined with a wildcard origin.
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Deps are the pieces the router needs besides the handlers.
type Deps struct {
	Tokens      *auth.TokenManager
	AuthLimiter *middleware.RateLimiter
	Log         *slog.Logger
}

func SetupRouter(h *handlers.Handlers, d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))

	// --- APPLY THE CORS GUARD ---
	router.Use(CORSMiddleware(h.Config.CORSOrigins))

	router.MaxMultipartMemory = 8 << 20
	router.Static("/uploads", h.Config.UploadDir)

	requireAuth := middleware.AuthMiddleware(d.Tokens)
	optionalAuth := middleware.OptionalAuth(d.Tokens)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		// --- Auth Routes (Public, rate-limited) ---
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", d.AuthLimiter.Middleware(), h.Register)
			authGroup.POST("/login", d.AuthLimiter.Middleware(), h.Login)
			authGroup.GET("/me", requireAuth, h.Me)
			authGroup.PUT("/password", requireAuth, h.ChangePassword)
		}

		// --- Public Product Routes ---
		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/meta/categories", h.GetCategories)
			products.GET("/meta/deals", h.GetDeals)
			products.GET("/meta/featured", h.GetFeatured)
			products.GET("/:id", h.GetProduct)
		}

		// --- Cart Routes (User or Guest) ---
		cartGroup := api.Group("/cart")
		cartGroup.Use(optionalAuth, middleware.CartSession())
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.POST("", h.AddToCart)
			cartGroup.DELETE("", h.ClearCart)
			cartGroup.POST("/merge", requireAuth, h.MergeCart)
			cartGroup.PUT("/:productId", h.UpdateCartItem)
			cartGroup.DELETE("/:productId", h.RemoveCartItem)
		}

		// --- Notification stream (websocket, token may be in the query) ---
		api.GET("/notifications/stream", middleware.StreamAuth(d.Tokens), h.StreamNotifications)

		// --- Assistant (optional sign-in) ---
		api.POST("/assistant/chat", optionalAuth, h.ChatAssistant)

		// --- Protected Routes (Login Required) ---
		protected := api.Group("")
		protected.Use(requireAuth)
		{
			wishlist := protected.Group("/wishlist")
			{
				wishlist.GET("", h.GetWishlist)
				wishlist.POST("", h.AddToWishlist)
				wishlist.POST("/toggle", h.ToggleWishlist)
				wishlist.DELETE("/:productId", h.RemoveFromWishlist)
			}

			orders := protected.Group("/orders")
			{
				orders.GET("", h.GetMyOrders)
				orders.POST("", h.PlaceOrder)
				orders.GET("/export", h.ExportOrders)
				orders.GET("/:id", h.GetOrderDetails)
				orders.PUT("/:id/status", h.UpdateOrderStatus)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.GetMyNotifications)
				notifications.POST("", h.CreateNotification)
				notifications.DELETE("", h.ClearNotifications)
				notifications.GET("/unread-count", h.GetUnreadCount)
				notifications.PUT("/read-all", h.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", h.MarkNotificationAsRead)
				notifications.DELETE("/:id", h.DeleteNotification)
			}

			usersGroup := protected.Group("/users")
			{
				usersGroup.PUT("/profile", h.UpdateProfile)
				usersGroup.POST("/avatar", h.UploadAvatar)
				usersGroup.GET("/stats", h.GetMyStats)
				usersGroup.GET("/addresses", h.GetAddresses)
				usersGroup.POST("/addresses", h.AddAddress)
				usersGroup.PUT("/addresses/:id", h.UpdateAddress)
				usersGroup.DELETE("/addresses/:id", h.DeleteAddress)
				usersGroup.GET("/settings", h.GetSettings)
				usersGroup.PUT("/settings", h.UpdateSettings)
			}
		}
	}

	return router
}
