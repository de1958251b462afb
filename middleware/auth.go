package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modusklar/modusklar/models"
	"github.com/modusklar/modusklar/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated participant ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the participant's display name inside Gin context.
	ContextUserNameKey = "user_name"
	// ContextAdminEmailKey stores the authenticated reviewer email inside Gin context.
	ContextAdminEmailKey = "admin_email"
)

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthRequired ensures the request carries a valid participant session token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing or malformed")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.UserID == 0 {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUserNameKey, claims.Name)
		ctx.Next()
	}
}

// AdminRequired ensures the request carries a valid reviewer token AND the
// email is still on the admin allow-list. Removal from the list revokes
// access even for live tokens.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "authorization header missing or malformed")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.AdminEmail == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		email := strings.ToLower(claims.AdminEmail)
		var admin models.Admin
		if err := db.Where("email = ?", email).First(&admin).Error; err != nil {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin access revoked")
			ctx.Abort()
			return
		}

		ctx.Set(ContextAdminEmailKey, email)
		ctx.Next()
	}
}
