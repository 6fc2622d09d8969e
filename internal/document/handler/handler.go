package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/service"
)

type listQuery struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Q      string `form:"q"`
}

type limitQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type createRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Status   string `json:"status" binding:"omitempty,oneof=draft published archived"`
	AuthorID string `json:"authorId" binding:"required"`
}

type updateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// RegisterRoutes mounts the docs API under rg (normally the /api group).
func RegisterRoutes(rg *gin.RouterGroup, svc service.Service) {
	h := &docsHandler{svc: svc}
	g := rg.Group("/docs")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.GET("/search", h.search)
	g.GET("/published", h.published)
	g.GET("/authors/:authorId/recent", h.recentByAuthor)
	g.GET("/authors/:authorId/count", h.countByAuthor)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/restore", h.restore)
}

type docsHandler struct {
	svc service.Service
}

func (h *docsHandler) create(c *gin.Context) {
	var req createRequest
	if err := bindStrictJSON(c, &req); err != nil {
		Failure(c, err)
		return
	}
	d, err := h.svc.Create(c.Request.Context(), document.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Status:   document.Status(req.Status),
		AuthorID: req.AuthorID,
	})
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusCreated, "Document created successfully", d)
}

func (h *docsHandler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Failure(c, bindingError(err))
		return
	}
	filter := document.Filter{Query: q.Q}
	if q.Status != "" {
		s := document.Status(q.Status)
		filter.Status = &s
	}
	p, err := h.svc.List(c.Request.Context(), document.PageRequest{Page: q.Page, Limit: q.Limit}, filter)
	if err != nil {
		Failure(c, err)
		return
	}
	paginated(c, "Documents retrieved successfully", p)
}

func (h *docsHandler) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Document retrieved successfully", d)
}

func (h *docsHandler) update(c *gin.Context) {
	var req updateRequest
	if err := bindStrictJSON(c, &req); err != nil {
		Failure(c, err)
		return
	}
	in := document.UpdateInput{Title: req.Title, Content: req.Content}
	if req.Status != nil {
		s := document.Status(*req.Status)
		in.Status = &s
	}
	d, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Document updated successfully", d)
}

func (h *docsHandler) remove(c *gin.Context) {
	d, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Document soft deleted successfully", d)
}

func (h *docsHandler) restore(c *gin.Context) {
	d, err := h.svc.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Document restored successfully", d)
}

func (h *docsHandler) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Statistics retrieved successfully", st)
}

func (h *docsHandler) search(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Failure(c, bindingError(err))
		return
	}
	docs, err := h.svc.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Search completed successfully", docs)
}

func (h *docsHandler) published(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Failure(c, bindingError(err))
		return
	}
	docs, err := h.svc.Published(c.Request.Context(), q.Limit)
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Published documents retrieved successfully", docs)
}

func (h *docsHandler) recentByAuthor(c *gin.Context) {
	var q limitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Failure(c, bindingError(err))
		return
	}
	docs, err := h.svc.RecentByAuthor(c.Request.Context(), c.Param("authorId"), q.Limit)
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Recent documents retrieved successfully", docs)
}

func (h *docsHandler) countByAuthor(c *gin.Context) {
	authorID := c.Param("authorId")
	n, err := h.svc.CountByAuthor(c.Request.Context(), authorID)
	if err != nil {
		Failure(c, err)
		return
	}
	Success(c, http.StatusOK, "Document count retrieved successfully", gin.H{"authorId": authorID, "count": n})
}

// bindStrictJSON decodes the body rejecting unknown fields, then runs the
// binding tags. Every failure is reported as a *document.ValidationError.
func bindStrictJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return fieldError("body", "request body is required")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			name = strings.Trim(name, `"`)
			return fieldError(name, "property "+name+" should not exist")
		}
		return fieldError("body", "malformed JSON body")
	}
	return bindingError(binding.Validator.ValidateStruct(dst))
}

var fieldNames = map[string]string{
	"Title":    "title",
	"Content":  "content",
	"Status":   "status",
	"AuthorID": "authorId",
	"Page":     "page",
	"Limit":    "limit",
}

// bindingError converts validator output into a *document.ValidationError.
func bindingError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fieldError("query", err.Error())
	}
	fields := make([]document.FieldError, 0, len(ve))
	for _, fe := range ve {
		name, ok := fieldNames[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fields = append(fields, document.FieldError{Field: name, Message: constraintMessage(name, fe)})
	}
	return &document.ValidationError{Fields: fields}
}

func constraintMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return name + " should not be empty"
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be shorter than or equal to %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must not be less than %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}

func fieldError(field, msg string) error {
	return &document.ValidationError{Fields: []document.FieldError{{Field: field, Message: msg}}}
}
