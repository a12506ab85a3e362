package middleware

import (
	"strings"

	"emcon-server/internal/cache"
	"emcon-server/internal/config"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AuthMiddleware creates a middleware for JWT authentication. When a redis
// client is supplied, denylisted (logged-out) access tokens are rejected.
func AuthMiddleware(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		if redisClient != nil {
			revoked, err := cache.IsAccessTokenDenylisted(c.Request.Context(), redisClient, tokenString)
			if err != nil {
				utils.InternalServerError(c, "Failed to validate token")
				c.Abort()
				return
			}
			if revoked {
				utils.Unauthorized(c, "Token has been revoked")
				c.Abort()
				return
			}
		}

		// Set user information in context for downstream handlers
		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("accessToken", tokenString)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("userRole")
		if !exists {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		role, ok := userRole.(models.Role)
		if !ok {
			utils.InternalServerError(c, "User role in context is not of expected type.")
			c.Abort()
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// ApprovedHospitalAdminMiddleware loads the caller's hospital admin profile
// and rejects callers whose application is not approved. It should be used
// after RoleAuthMiddleware(models.RoleHospitalAdmin). The profile is stored
// in the context under "adminProfile".
func ApprovedHospitalAdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		var profile models.HospitalAdminProfile
		if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.Forbidden(c, "No hospital admin profile found for this account")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			c.Abort()
			return
		}

		if profile.Status != models.ApprovalApproved {
			utils.Forbidden(c, "Hospital admin application has not been approved")
			c.Abort()
			return
		}

		c.Set("adminProfile", &profile)
		c.Next()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// GetAdminProfileFromContext returns the hospital admin profile loaded by
// ApprovedHospitalAdminMiddleware.
func GetAdminProfileFromContext(c *gin.Context) (*models.HospitalAdminProfile, bool) {
	v, exists := c.Get("adminProfile")
	if !exists {
		return nil, false
	}
	profile, ok := v.(*models.HospitalAdminProfile)
	return profile, ok
}
