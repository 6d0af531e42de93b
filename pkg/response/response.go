package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ViewData is the payload handed to the template-rendering collaborator when a
// form page is (re)displayed: submitted values, per-field errors, and whatever
// the page shows (user, documents).
type ViewData struct {
	Form      map[string]string `json:"form,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	User      any               `json:"user,omitempty"`
	Documents any               `json:"documents,omitempty"`
}

type Envelope struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

// OK writes a success envelope.
func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{
		Status:    http.StatusOK,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	})
}

// Redisplay writes a 200 with the form view data so the caller can re-render
// the page with field errors. Validation failures are not HTTP errors.
func Redisplay(c *gin.Context, view ViewData, message string) {
	c.JSON(http.StatusOK, Envelope{
		Status:    http.StatusOK,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Data:      view,
	})
}

// Fail writes an error envelope with the given status.
func Fail(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, Envelope{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
	})
}
