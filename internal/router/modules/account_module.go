package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"accounthub/internal/container"
	handlers "accounthub/internal/interface/http"
	"accounthub/internal/interface/middleware"
	"accounthub/internal/session"
)

// AccountModule wires the account pages.
// Public: GET/POST /register/, GET/POST /login/
// Protected: POST /logout/, GET/POST /profile/
type AccountModule struct {
	Handler *handlers.AccountHandler
	Gate    session.Gate
}

func NewAccountModule(h *handlers.AccountHandler, gate session.Gate) *AccountModule {
	return &AccountModule{Handler: h, Gate: gate}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/register/", m.Handler.RegisterPage)
	rg.POST("/register/", registerLimiter, m.Handler.Register)
	rg.GET("/login/", m.Handler.LoginPage)
	rg.POST("/login/", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.Gate, handlers.LoginPath))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout/", m.Handler.Logout)
		auth.GET("/profile/", m.Handler.ProfilePage)
		auth.POST("/profile/", m.Handler.ProfileUpdate)
	}
}
