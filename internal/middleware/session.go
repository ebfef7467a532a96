package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderCartSession  = "X-Cart-Session"
	ContextCartSession = "cartSession"
)

// CartSession reads the guest cart id from X-Cart-Session. A malformed id
// is ignored so that the client gets a fresh one on its next add.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := c.GetHeader(HeaderCartSession); s != "" {
			if _, err := uuid.Parse(s); err == nil {
				c.Set(ContextCartSession, s)
			}
		}
		c.Next()
	}
}

// Session returns the guest cart id sent by the client.
func Session(c *gin.Context) string {
	return c.GetString(ContextCartSession)
}

// NewSession issues a guest cart id and echoes it in the response header.
func NewSession(c *gin.Context) string {
	s := uuid.NewString()
	c.Set(ContextCartSession, s)
	c.Header(HeaderCartSession, s)
	return s
}
