// Package forms is the check-before-persist pipeline for every mutating
// operation. Each entity has a static schema (struct tags plus explicit file
// checks) that yields either a typed record or a map of field errors; nothing
// is written to a store until the whole form passes.
package forms

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"accounthub/pkg/validation"
)

const (
	// DefaultDocumentTitle is used when the title field is omitted on upload.
	DefaultDocumentTitle = "Untitled document"

	MsgPasswordMismatch  = "password mismatch"
	MsgNoFileSelected    = "no file selected"
	MsgInvalidFileFormat = "invalid file format"
	MsgAvatarNotImage    = "avatar must be an image"
)

// allowedDocExts is the fixed allow-list for document uploads.
var allowedDocExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type RegisterForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"required,email"`
	Password1 string `form:"password1" binding:"required,pwd"`
	Password2 string `form:"password2" binding:"required"`
}

type ProfileForm struct {
	Username string `form:"username" binding:"required,max=150,username"`
	Email    string `form:"email" binding:"required,email"`
	Bio      string `form:"bio" binding:"omitempty"`
	Website  string `form:"website" binding:"omitempty,url"`

	Avatar *multipart.FileHeader `form:"-"`
}

type UploadForm struct {
	Title string `form:"title" binding:"omitempty,max=100"`

	Document *multipart.FileHeader `form:"-"`
}

// Register binds and validates a registration submission.
func Register(c *gin.Context) (*RegisterForm, map[string]string) {
	var f RegisterForm
	errs := validation.ToDetails(c.ShouldBind(&f))
	if errs == nil {
		errs = map[string]string{}
	}
	if _, seen := errs["password2"]; !seen && f.Password1 != f.Password2 {
		errs["password2"] = MsgPasswordMismatch
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &f, nil
}

// Profile binds and validates a profile-edit submission. The avatar, when
// present, must be an image-typed upload.
func Profile(c *gin.Context) (*ProfileForm, map[string]string) {
	var f ProfileForm
	errs := validation.ToDetails(c.ShouldBind(&f))
	if errs == nil {
		errs = map[string]string{}
	}
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		f.Avatar = fh
		if !isImage(fh) {
			errs["avatar"] = MsgAvatarNotImage
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &f, nil
}

// Upload binds and validates a document-upload submission against the fixed
// format allow-list and the size ceiling. An omitted title gets the
// placeholder.
func Upload(c *gin.Context, maxBytes int64) (*UploadForm, map[string]string) {
	var f UploadForm
	errs := validation.ToDetails(c.ShouldBind(&f))
	if errs == nil {
		errs = map[string]string{}
	}

	fh, err := c.FormFile("document")
	if err != nil || fh == nil {
		errs["document"] = MsgNoFileSelected
	} else {
		f.Document = fh
		if !allowedDocExts[ext(fh)] {
			errs["document"] = MsgInvalidFileFormat
		} else if fh.Size > maxBytes {
			errs["document"] = fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if strings.TrimSpace(f.Title) == "" {
		f.Title = DefaultDocumentTitle
	}
	return &f, nil
}

func ext(fh *multipart.FileHeader) string {
	return strings.ToLower(filepath.Ext(fh.Filename))
}

func isImage(fh *multipart.FileHeader) bool {
	if ct := fh.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		return true
	}
	return allowedAvatarExts[ext(fh)]
}
