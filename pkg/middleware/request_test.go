package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
)

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(200, c.GetString(RequestIDKey)) })

	w := serve(r, "/x", "")
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, id, w.Body.String())

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Init("info")
	defer logger.SetOutput(os.Stdout)

	r := gin.New()
	r.Use(RequestID(), RequestLogger())
	r.GET("/api/docs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest("GET", "/api/docs/42?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Regexp(t, `\[INFO\] \[HTTP\] GET /api/docs/42\?x=1 404 - \d+ms \[req-1\]`, buf.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(200) })

	req := httptest.NewRequest("OPTIONS", "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
