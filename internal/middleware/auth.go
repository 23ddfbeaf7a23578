package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/utils"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// AccessTokenValidator verifies bearer tokens.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*utils.Claims, error)
}

// bearerToken extracts the token from the Authorization header.
// present is false when the header is missing altogether.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

func authenticate(c *gin.Context, tokens AccessTokenValidator, required bool) bool {
	token, present, ok := bearerToken(c)
	if !present {
		if required {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return false
		}
		return true
	}
	if !ok {
		utils.Unauthorized(c, "Invalid authorization header format")
		c.Abort()
		return false
	}

	return identify(c, tokens, token)
}

func identify(c *gin.Context, tokens AccessTokenValidator, token string) bool {
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		utils.Unauthorized(c, "Invalid or expired token")
		c.Abort()
		return false
	}

	// Set user information in context for downstream handlers
	c.Set(userIDKey, claims.UserID)
	c.Set(userRoleKey, claims.Role)
	return true
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(tokens AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, tokens, true) {
			c.Next()
		}
	}
}

// OptionalAuthMiddleware identifies the caller when a bearer token is sent.
// A missing header passes through anonymously; a bad token is still rejected.
func OptionalAuthMiddleware(tokens AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, tokens, false) {
			c.Next()
		}
	}
}

// QueryTokenAuthMiddleware identifies the caller from the access_token query parameter,
// for websocket upgrades that cannot carry an Authorization header. Without the
// parameter it behaves like OptionalAuthMiddleware.
func QueryTokenAuthMiddleware(tokens AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.Query("access_token"); token != "" {
			if identify(c, tokens, token) {
				c.Next()
			}
			return
		}
		if authenticate(c, tokens, false) {
			c.Next()
		}
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.Unauthorized(c, "Authentication required.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// GetUserIDFromContext returns the authenticated user id, if any.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// GetUserRoleFromContext returns the authenticated user role, if any.
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(userRoleKey)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
