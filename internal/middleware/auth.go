package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/auth"
	"github.com/testtrack-dev/testtrack/internal/authz"
	"github.com/testtrack-dev/testtrack/internal/flash"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/types"
)

// RequireAuth resolves the session cookie into an AuthenticatedUser and
// stores it in the request context. The user row is loaded fresh on every
// request so role changes take effect immediately. Unauthenticated requests
// are redirected to the login page without reaching the handler.
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := ctx.Cookie(auth.SessionCookieName)

		if err != nil || tokenString == "" {
			redirectToLogin(ctx)
			return
		}

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			redirectToLogin(ctx)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			redirectToLogin(ctx)
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			redirectToLogin(ctx)
			return
		}

		userID := uint(userIDFloat)

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			redirectToLogin(ctx)
			return
		}

		ctx.Set(types.ContextUserKey, types.AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}

// RequireAdmin gates a route on the admin role. It must run after
// RequireAuth. Non-admins get a forbidden outcome (danger notice + redirect
// to the dashboard) and the handler body never executes.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			redirectToLogin(ctx)
			return
		}

		authenticatedUser, ok := user.(types.AuthenticatedUser)

		if !ok || !authz.CanDeleteProject(authenticatedUser) {
			flash.Set(ctx, flash.KindDanger, "Admin access required.")
			ctx.Redirect(http.StatusFound, "/")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func redirectToLogin(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/login")
	ctx.Abort()
}
