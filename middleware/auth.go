package middleware

import (
	"net/http"
	"strings"

	"wellness-ops-backend/models"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID     = "user_id"
	ContextUserEmail  = "user_email"
	ContextUserRole   = "user_role"
	ContextPropertyID = "property_id"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		if claims.PropertyID != nil {
			c.Set(ContextPropertyID, *claims.PropertyID)
		}
		c.Next()
	}
}

func requireRole(role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get(ContextUserRole)
		if !exists || got != role {
			c.JSON(http.StatusForbidden, gin.H{"error": message})
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return requireRole(models.RoleAdmin, "Admin access required")
}

func TherapistMiddleware() gin.HandlerFunc {
	return requireRole(models.RoleTherapist, "Therapist access required")
}

// CurrentUserID returns the authenticated caller's id.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}
