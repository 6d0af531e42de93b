package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"accounthub/internal/container"
	handlers "accounthub/internal/interface/http"
	"accounthub/internal/interface/middleware"
	"accounthub/internal/session"
)

// DocumentModule wires the upload and search routes; everything is gated.
type DocumentModule struct {
	Handler *handlers.DocumentHandler
	Gate    session.Gate
}

func NewDocumentModule(h *handlers.DocumentHandler, gate session.Gate) *DocumentModule {
	return &DocumentModule{Handler: h, Gate: gate}
}

func (m *DocumentModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.RequireAuth(m.Gate, handlers.LoginPath))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/upload/", m.Handler.UploadPage)
		auth.POST("/upload/", m.Handler.Upload)
		auth.GET("/documents/search", m.Handler.Search)
	}
}
