package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "farmalytics/server/errors"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestGinRequestID(t *testing.T) {
	router := newRouter()
	router.Use(GinRequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	router.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get("X-Request-ID"))
}

func TestGinCORSPreflight(t *testing.T) {
	router := newRouter()
	router.Use(GinCORS())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGinRecovery(t *testing.T) {
	router := newRouter()
	router.Use(GinRequestID(), GinRecovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestGinRateLimit(t *testing.T) {
	router := newRouter()
	router.Use(GinRateLimit(1, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestAbortWithError(t *testing.T) {
	router := newRouter()
	router.Use(GinRequestID())
	router.GET("/apperr", func(c *gin.Context) {
		AbortWithError(c, apperrors.NewNotFoundError("dataset not found", nil))
	})
	router.GET("/plain", func(c *gin.Context) {
		AbortWithError(c, errors.New("disk exploded"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apperr", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset not found")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details never leak to the client.
	assert.NotContains(t, rec.Body.String(), "disk exploded")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
