package middleware

import (
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key the authenticated user id is stored
// under.
const ContextUserID = "userID"

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware is the "security guard" for routes that need a signed-in
// user.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, bearerToken)
}

// StreamAuth is AuthMiddleware for websocket upgrades. Browsers cannot set
// headers on a websocket handshake, so ?token= is accepted as well.
func StreamAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, func(c *gin.Context) (string, bool) {
		if t, ok := bearerToken(c); ok {
			return t, true
		}
		t := c.Query("token")
		return t, t != ""
	})
}

func authenticate(tokens *auth.TokenManager, extract func(*gin.Context) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		tokenString, ok := extract(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		// 2. --- Validate Token ---
		userID, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Success ---
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and lets the
// request through either way. An invalid token is treated as no token.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if userID, err := tokens.ValidateToken(tokenString); err == nil {
				c.Set(ContextUserID, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
