package modules

import (
	"github.com/gin-gonic/gin"

	handlers "accounthub/internal/interface/http"
)

// LocaleModule wires the language selector. The route is POST-only; the
// engine's method-not-allowed handling rejects everything else.
type LocaleModule struct {
	Handler *handlers.LanguageHandler
}

func NewLocaleModule(h *handlers.LanguageHandler) *LocaleModule {
	return &LocaleModule{Handler: h}
}

func (m *LocaleModule) Register(rg *gin.RouterGroup) {
	rg.POST("/set-language/", m.Handler.SetLanguage)
}
