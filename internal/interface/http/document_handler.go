package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounthub/internal/application"
	"accounthub/internal/forms"
	"accounthub/internal/interface/middleware"
	"accounthub/pkg/response"
)

// DocumentHandler orchestrates upload and search for the caller's documents.
type DocumentHandler struct {
	Documents      *application.DocumentService
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewDocumentHandler(documents *application.DocumentService, logger *logrus.Logger, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{Documents: documents, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

// UploadPage handles GET /upload/
func (h *DocumentHandler) UploadPage(c *gin.Context) {
	response.OK(c, response.ViewData{Form: map[string]string{}}, "upload")
}

// Upload handles POST /upload/. The owner is always the authenticated user.
// Rejected uploads persist nothing, neither blob nor row.
func (h *DocumentHandler) Upload(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f, errs := forms.Upload(c, h.MaxUploadBytes)
	if errs != nil {
		response.Redisplay(c, response.ViewData{
			Form:   map[string]string{"title": c.PostForm("title")},
			Errors: errs,
		}, "upload failed")
		return
	}

	file, err := f.Document.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "file unreadable")
		return
	}
	defer func() { _ = file.Close() }()

	d, err := h.Documents.Upload(
		c.Request.Context(),
		uid,
		f.Title,
		f.Document.Filename,
		f.Document.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("document upload failed")
		response.Fail(c, http.StatusInternalServerError, "upload unavailable")
		return
	}

	h.Logger.WithFields(logrus.Fields{"user_id": uid, "document_id": d.ID}).Info("document uploaded")
	c.Redirect(http.StatusSeeOther, ProfilePath)
}

// Search handles GET /documents/search?q=
func (h *DocumentHandler) Search(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	q := c.Query("q")
	if q == "" {
		response.OK(c, []map[string]any{}, "search")
		return
	}
	hits, err := h.Documents.Search(c.Request.Context(), uid, q, 20)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("document search failed")
		response.Fail(c, http.StatusInternalServerError, "search unavailable")
		return
	}
	response.OK(c, hits, "search")
}
