package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/platform/ctxutil"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth accepts the access_token cookie or a bearer header and stores
// the caller in the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := am.authService.ParseToken(extractToken(c))
		if err != nil {
			am.log.Debug("Rejected request", "path", c.Request.URL.Path, "error", err)
			response.Fail(c, err)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			Email: user.Email,
			Name:  user.Name,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if v, err := c.Cookie(services.AccessTokenCookie); err == nil && v != "" {
		return v
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
