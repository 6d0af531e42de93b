package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounthub/config"
	"accounthub/internal/session"
	"accounthub/pkg/helpers"
)

// LanguageHandler implements the locale selector. POST only; other methods
// are rejected by the router.
type LanguageHandler struct {
	Cfg     *config.Config
	Gate    session.Gate
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewLanguageHandler(cfg *config.Config, gate session.Gate, cookies *helpers.CookieManager, logger *logrus.Logger) *LanguageHandler {
	return &LanguageHandler{Cfg: cfg, Gate: gate, Cookies: cookies, Logger: logger}
}

// SetLanguage handles POST /set-language/. A supported code is written to the
// cookie and, when a session exists, to the session state. An unsupported
// code changes nothing; either way the caller is redirected to next, then the
// referring page, then root. The silent no-op on invalid codes is deliberate.
func (h *LanguageHandler) SetLanguage(c *gin.Context) {
	code := c.PostForm("language")
	if h.Cfg.LanguageSupported(code) {
		h.Cookies.SetLanguage(c, code)
		if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
			if id, err := h.Gate.Resolve(c.Request.Context(), token); err == nil {
				if err := h.Gate.SetLanguage(c.Request.Context(), id.UserID, code); err != nil {
					h.Logger.WithError(err).WithField("user_id", id.UserID).Warn("session language update failed")
				}
			}
		}
	}
	c.Redirect(http.StatusSeeOther, nextTarget(c, ""))
}
