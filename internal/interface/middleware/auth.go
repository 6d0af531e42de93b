package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accounthub/internal/session"
	"accounthub/pkg/helpers"
)

const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "userName"
	CtxLanguageKey = "userLang"
)

// RequireAuth resolves the access-token cookie through the session gate and
// injects the identity into the Gin context. Unauthenticated requests are
// redirected to the login page; the original request is discarded.
func RequireAuth(gate session.Gate, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			redirectToLogin(c, loginPath)
			return
		}
		id, err := gate.Resolve(c.Request.Context(), token)
		if err != nil {
			redirectToLogin(c, loginPath)
			return
		}
		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxUsernameKey, id.Username)
		c.Set(CtxLanguageKey, id.Language)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, loginPath string) {
	c.Redirect(http.StatusSeeOther, loginPath)
	c.Abort()
}
