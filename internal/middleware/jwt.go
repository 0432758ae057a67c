package middleware

import (
	"net/http"
	"strings"

	"expense_tracker/internal/auth"
	"expense_tracker/internal/user"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware is the single authorization gate for protected routes. It
// resolves the bearer token to a live user and stores the user id in the
// request context. Every failure mode (missing header, malformed token, bad
// signature, expiry, unknown or deleted user) gets the same 401 body so the
// response never reveals which check failed.
func AuthMiddleware(secret string, users user.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthenticated(c)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthenticated(c)
			return
		}

		userID, err := auth.ValidateToken(parts[1], secret)
		if err != nil {
			unauthenticated(c)
			return
		}

		// A valid token for a deleted account is still rejected.
		if _, err := users.GetUserByID(userID); err != nil {
			unauthenticated(c)
			return
		}

		c.Set(auth.UserIDKey, userID)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
	c.Abort()
}
