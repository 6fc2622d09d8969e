package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
)

// Envelope is the uniform JSON body of every docs API response.
type Envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       any                   `json:"data,omitempty"`
	Error      string                `json:"error,omitempty"`
	Details    []document.FieldError `json:"details,omitempty"`
	Pagination *Pagination           `json:"pagination,omitempty"`
	Timestamp  string                `json:"timestamp"`
	Path       string                `json:"path"`
	Method     string                `json:"method"`
	StatusCode int                   `json:"statusCode"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func envelope(c *gin.Context, status int, message string) Envelope {
	return Envelope{
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Path:       c.Request.URL.RequestURI(),
		Method:     c.Request.Method,
		StatusCode: status,
	}
}

// Success writes data wrapped in the envelope.
func Success(c *gin.Context, status int, message string, data any) {
	e := envelope(c, status, message)
	e.Data = data
	c.JSON(status, e)
}

func paginated(c *gin.Context, message string, p document.Page) {
	e := envelope(c, http.StatusOK, message)
	e.Data = p.Items
	e.Pagination = &Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
	c.JSON(http.StatusOK, e)
}

// Failure maps err onto the envelope: validation 400, not found 404,
// anything else 500 without internal detail.
func Failure(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"
	var details []document.FieldError
	var verr *document.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		msg = "Validation failed"
		details = verr.Fields
	case errors.Is(err, document.ErrNotFound):
		status = http.StatusNotFound
		msg = "Document not found"
		if id := c.Param("id"); id != "" {
			msg = "Document with ID " + id + " not found"
		}
	}
	e := envelope(c, status, "Operation failed")
	e.Error = msg
	e.Details = details
	c.AbortWithStatusJSON(status, e)
}
