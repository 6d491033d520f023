package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticAuthenticator map[string]string

func (a staticAuthenticator) Authenticate(token string) (string, error) {
	if user, ok := a[token]; ok {
		return user, nil
	}
	return "", errors.New("unknown token")
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecoveryAnswersJSON(t *testing.T) {
	logs := captureLogs(t)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("nil map write") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
	assert.Contains(t, logs.String(), "nil map write")
}

func TestRecoveryRepanicsOnAbortHandler(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/abort", func(*gin.Context) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(r, httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
}

func TestRequireAuth(t *testing.T) {
	logs := captureLogs(t)
	r := gin.New()
	r.Use(Logger(), RequireAuth(staticAuthenticator{"tok-1": "ravi"}))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, GetUsername(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-2")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ravi", w.Body.String())
	assert.Contains(t, logs.String(), `"user":"ravi"`)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(4))
	r.POST("/echo", func(c *gin.Context) {
		var buf bytes.Buffer
		_, err := buf.ReadFrom(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, buf.String())
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("ok")))
	assert.Equal(t, "ok", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
