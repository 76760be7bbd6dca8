package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/http/response"
	"github.com/yungbote/mimichub-backend/internal/platform/ctxutil"
	"github.com/yungbote/mimichub-backend/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

func (ah *AuthHandler) setAccessCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     services.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ah.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// POST /auth/google
// body: { "code": "...", "redirect_uri": "postmessage" }
func (ah *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req struct {
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := ah.authService.SignInWithGoogle(c.Request.Context(), req.Code)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ah.setAccessCookie(c, token, int(ah.authService.AccessTTL().Seconds()))
	response.RespondOK(c, gin.H{"user": user})
}

// GET /api/users/me
func (ah *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.Fail(c, domainagg.NewError(domainagg.CodeUnauthorized, "auth.me", "Not authenticated", nil))
		return
	}
	response.RespondOK(c, services.User{Email: rd.Email, Name: rd.Name})
}

// POST|GET /auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	ah.setAccessCookie(c, "", -1)
	response.RespondMessage(c, "Successfully logged out")
}
