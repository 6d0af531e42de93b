package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounthub/internal/application"
	"accounthub/internal/domain/entity"
	"accounthub/internal/domain/repository"
	"accounthub/internal/forms"
	"accounthub/internal/interface/middleware"
	"accounthub/internal/session"
	"accounthub/pkg/helpers"
	"accounthub/pkg/response"
)

const (
	ProfilePath = "/profile/"
	LoginPath   = "/login/"
	HomePath    = "/"
)

// AccountHandler orchestrates register/login/logout/profile. It composes the
// validation pipeline, the account service and the session gate; it holds no
// logic of its own beyond redirect-vs-redisplay.
type AccountHandler struct {
	Accounts  *application.AccountService
	Documents *application.DocumentService
	Gate      session.Gate
	Logger    *logrus.Logger
	Cookies   *helpers.CookieManager
	DefaultLanguage string
}

func NewAccountHandler(accounts *application.AccountService, documents *application.DocumentService, gate session.Gate, logger *logrus.Logger, cookies *helpers.CookieManager, defaultLanguage string) *AccountHandler {
	return &AccountHandler{
		Accounts:        accounts,
		Documents:       documents,
		Gate:            gate,
		Logger:          logger,
		Cookies:         cookies,
		DefaultLanguage: defaultLanguage,
	}
}

// RegisterPage handles GET /register/
func (h *AccountHandler) RegisterPage(c *gin.Context) {
	response.OK(c, response.ViewData{Form: map[string]string{}}, "register")
}

// Register handles POST /register/. Validation failure redisplays the form
// with field errors and persists nothing; success persists the account,
// starts a session and redirects to the profile.
func (h *AccountHandler) Register(c *gin.Context) {
	f, errs := forms.Register(c)
	if errs != nil {
		response.Redisplay(c, response.ViewData{
			Form:   map[string]string{"username": c.PostForm("username"), "email": c.PostForm("email")},
			Errors: errs,
		}, "registration failed")
		return
	}

	u, err := h.Accounts.Register(c.Request.Context(), f.Username, f.Email, f.Password1)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			response.Redisplay(c, response.ViewData{
				Form:   map[string]string{"username": f.Username, "email": f.Email},
				Errors: map[string]string{"username": "username already taken"},
			}, "registration failed")
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Fail(c, http.StatusInternalServerError, "registration unavailable")
		return
	}

	h.startSession(c, u)
	c.Redirect(http.StatusSeeOther, ProfilePath)
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// LoginPage handles GET /login/. An already-authenticated caller is
// redirected without being re-prompted.
func (h *AccountHandler) LoginPage(c *gin.Context) {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		if _, err := h.Gate.Resolve(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusSeeOther, nextTarget(c, ProfilePath))
			return
		}
	}
	response.OK(c, response.ViewData{Form: map[string]string{}}, "login")
}

// Login handles POST /login/. Any failure yields the same generic message so
// usernames cannot be enumerated.
func (h *AccountHandler) Login(c *gin.Context) {
	var f loginForm
	if err := c.ShouldBind(&f); err != nil {
		h.loginRejected(c)
		return
	}
	u, err := h.Accounts.Authenticate(c.Request.Context(), f.Username, f.Password)
	if err != nil {
		h.loginRejected(c)
		return
	}

	h.startSession(c, u)
	c.Redirect(http.StatusSeeOther, nextTarget(c, ProfilePath))
}

func (h *AccountHandler) loginRejected(c *gin.Context) {
	response.Redisplay(c, response.ViewData{
		Form:   map[string]string{"username": c.PostForm("username")},
		Errors: map[string]string{"__all__": "invalid credentials"},
	}, "login failed")
}

// Logout handles POST /logout/: the session is destroyed and the caller is
// sent home. The language cookie survives.
func (h *AccountHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Gate.Destroy(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("session destroy failed")
	}
	h.Cookies.ClearAuth(c)
	c.Redirect(http.StatusSeeOther, HomePath)
}

// ProfilePage handles GET /profile/: the caller's own record plus their
// documents, newest upload first.
func (h *AccountHandler) ProfilePage(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Accounts.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "user not found")
		return
	}
	docs, err := h.Documents.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("document listing failed")
		response.Fail(c, http.StatusInternalServerError, "profile unavailable")
		return
	}
	response.OK(c, response.ViewData{
		Form:      profileFormValues(u),
		User:      userView(u),
		Documents: documentViews(docs),
	}, "profile")
}

// ProfileUpdate handles POST /profile/. The target record is always the
// authenticated user; no id is accepted from the client.
func (h *AccountHandler) ProfileUpdate(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f, errs := forms.Profile(c)
	if errs != nil {
		response.Redisplay(c, response.ViewData{
			Form: map[string]string{
				"username": c.PostForm("username"),
				"email":    c.PostForm("email"),
				"bio":      c.PostForm("bio"),
				"website":  c.PostForm("website"),
			},
			Errors: errs,
		}, "profile update failed")
		return
	}

	in := application.UpdateProfileInput{
		Username: f.Username,
		Email:    f.Email,
		Bio:      f.Bio,
		Website:  f.Website,
	}
	if f.Avatar != nil {
		file, err := f.Avatar.Open()
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "avatar unreadable")
			return
		}
		defer func() { _ = file.Close() }()
		in.Avatar = &application.AvatarUpload{
			Reader:      file,
			Filename:    f.Avatar.Filename,
			ContentType: f.Avatar.Header.Get("Content-Type"),
		}
	}

	if _, err := h.Accounts.UpdateProfile(c.Request.Context(), uid, in); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			response.Redisplay(c, response.ViewData{
				Form:   profileFormFromInput(in),
				Errors: map[string]string{"username": "username already taken"},
			}, "profile update failed")
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("profile update failed")
		response.Fail(c, http.StatusInternalServerError, "profile update unavailable")
		return
	}
	c.Redirect(http.StatusSeeOther, ProfilePath)
}

func (h *AccountHandler) startSession(c *gin.Context, u *entity.User) {
	lang := h.DefaultLanguage
	if v, err := c.Cookie(helpers.LanguageCookie); err == nil && v != "" {
		lang = v
	}
	pair, err := h.Gate.Start(c.Request.Context(), u, lang)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("session start failed")
		response.Fail(c, http.StatusInternalServerError, "session unavailable")
		c.Abort()
		return
	}
	h.Cookies.SetAuthPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
}

// nextTarget resolves the post-action redirect: explicit next parameter,
// then the referring page, then root.
func nextTarget(c *gin.Context, def string) string {
	if next := c.PostForm("next"); next != "" && isLocalPath(next) {
		return next
	}
	if next := c.Query("next"); next != "" && isLocalPath(next) {
		return next
	}
	if def != "" {
		return def
	}
	if ref := c.Request.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" && isLocalPath(u.Path) {
			return u.RequestURI()
		}
	}
	return HomePath
}

// isLocalPath rejects absolute URLs so the next parameter cannot become an
// open redirect.
func isLocalPath(p string) bool {
	return len(p) > 0 && p[0] == '/' && !(len(p) > 1 && p[1] == '/')
}

func profileFormValues(u *entity.User) map[string]string {
	return map[string]string{
		"username": u.Username,
		"email":    u.Email,
		"bio":      u.Bio,
		"website":  u.Website,
	}
}

func profileFormFromInput(in application.UpdateProfileInput) map[string]string {
	return map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"bio":      in.Bio,
		"website":  in.Website,
	}
}

func userView(u *entity.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"website":    u.Website,
		"is_staff":   u.IsStaff,
		"joined_at":  u.CreatedAt,
	}
}

func documentViews(docs []entity.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{
			"id":          d.ID,
			"title":       d.Title,
			"file_url":    d.FileURL,
			"uploaded_at": d.UploadedAt,
		})
	}
	return out
}
