package middleware

import (
	"strings"

	"todoapi/internal/adapter/http/helper"
	"todoapi/pkg/auth"

	"github.com/gin-gonic/gin"
)

// OwnerKey is the context key the handlers read the authenticated subject
// from. Nothing downstream ever takes an owner id from a request body.
const OwnerKey = "x-owner-id"

// GinJwtMiddleware validates the bearer token and resolves the caller's
// subject identifier. A valid token without a usable identity claim is
// still unauthorized: the data layer cannot scope anything to it.
func GinJwtMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")

		if bearer == "" {
			helper.SendUnauthorizedError(c, "Unauthorized request")
			c.Abort()
			return
		}

		if !strings.HasPrefix(bearer, "Bearer ") {
			helper.SendUnauthorizedError(c, "Invalid authorization format")
			c.Abort()
			return
		}

		claims, err := auth.VerifyJwtToken(bearer[len("Bearer "):])

		if err != nil {
			helper.SendUnauthorizedError(c, "Unauthorized request")
			c.Abort()
			return
		}

		subject := auth.SubjectFromClaims(claims)

		if subject == "" {
			helper.SendUnauthorizedError(c, "Token carries no usable identity")
			c.Abort()
			return
		}

		c.Set(OwnerKey, subject)
		c.Next()
	}
}

// OwnerID returns the authenticated subject set by GinJwtMiddleware.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerKey)
}
