package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
	"github.com/noah-isme/tuition-center-api/pkg/response"
)

// RequireAdmin admits administrators and superusers.
func RequireAdmin() gin.HandlerFunc {
	return requireClaims("administrator access required", (*models.JWTClaims).IsAdmin)
}

// RequireStaffOrAdmin admits staff, administrators and superusers.
func RequireStaffOrAdmin() gin.HandlerFunc {
	return requireClaims("staff or administrator access required", (*models.JWTClaims).IsStaffOrAdmin)
}

// requireClaims runs before the handler so a rejected request never reaches a mutation.
// Missing claims yield 401, claims failing allow yield 403.
func requireClaims(message string, allow func(*models.JWTClaims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}
		if !allow(claims) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, message))
			c.Abort()
			return
		}
		c.Next()
	}
}
