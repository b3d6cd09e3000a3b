package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"roti-erp/internal/auth"
	"roti-erp/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUser   = "user"
	ctxUserID = "userID"
	ctxRole   = "role"
)

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// AuthMiddleware checks the bearer token, loads the user and rejects inactive
// accounts.
func AuthMiddleware(tokens *auth.TokenManager, users auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header must start with Bearer")
			return
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		user, err := users.Lookup(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownUser) {
				abort(c, http.StatusUnauthorized, "unauthorized", "User no longer exists")
				return
			}
			abort(c, http.StatusInternalServerError, "internal_error", "Failed to load user")
			return
		}
		if !user.IsActive {
			abort(c, http.StatusUnauthorized, "unauthorized", "Account is inactive")
			return
		}

		// The stored role wins over the one baked into the token.
		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, auth.Role(user.Role))
		c.Next()
	}
}

// RequireRole lets through users at or above min in the role hierarchy.
func RequireRole(min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if !role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":        "forbidden",
				"message":      fmt.Sprintf("This action requires role %s or higher; current role is %s", min, displayRole(role)),
				"requiredRole": min,
				"currentRole":  role,
			})
			return
		}
		c.Next()
	}
}

func displayRole(r auth.Role) string {
	if r == "" {
		return "none"
	}
	return string(r)
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns 0 when the request is unauthenticated.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// CurrentRole returns "" when the request is unauthenticated.
func CurrentRole(c *gin.Context) auth.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(auth.Role); ok {
			return r
		}
	}
	return ""
}
