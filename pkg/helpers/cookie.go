package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie   = "access_token"
	RefreshCookie  = "refresh_token"
	LanguageCookie = "lang"

	languageCookieMaxAge = 365 * 24 * 60 * 60 // one year
)

type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookieManager(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetAuthPair stores the access/refresh token pair as HttpOnly cookies.
func (m *CookieManager) SetAuthPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, access, maxAgeFrom(aexp), "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, refresh, maxAgeFrom(rexp), "/", m.Domain, m.Secure, true)
}

// ClearAuth removes the auth cookies. The language cookie is left alone:
// locale preference survives logout.
func (m *CookieManager) ClearAuth(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", m.Domain, m.Secure, true)
}

// SetLanguage stores the locale preference for one year. The Secure flag
// mirrors the transport of the inbound request rather than static config.
func (m *CookieManager) SetLanguage(c *gin.Context, code string) {
	c.SetSameSite(http.SameSiteLaxMode)
	secure := c.Request.TLS != nil
	c.SetCookie(LanguageCookie, code, languageCookieMaxAge, "/", m.Domain, secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
