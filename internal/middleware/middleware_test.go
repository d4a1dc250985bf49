package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(), CORS(origins))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, body)
	})
	return r
}

func TestCORSAllowedOrigin(t *testing.T) {
	r := newEngine([]string{"http://localhost:5173/"})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"b"}`))
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	// the logger must hand the body on intact
	assert.JSONEq(t, `{"a":"b"}`, w.Body.String())
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := newEngine([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine([]string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://anywhere.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}
