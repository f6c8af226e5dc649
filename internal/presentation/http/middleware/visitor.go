// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	VisitorHeader = "X-Visitor-ID"
	visitorKey    = "visitorId"
)

// VisitorMiddleware resolves the visitor id from the X-Visitor-ID header,
// falling back to the client IP.
func VisitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := strings.TrimSpace(c.GetHeader(VisitorHeader))
		if visitorID == "" {
			visitorID = c.ClientIP()
		}
		c.Set(visitorKey, visitorID)
		c.Next()
	}
}

// GetVisitorID returns the id resolved by VisitorMiddleware.
func GetVisitorID(c *gin.Context) string {
	if v, ok := c.Get(visitorKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.ClientIP()
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
