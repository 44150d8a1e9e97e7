package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(GinMiddleware(zap.New(core)))

	var seenID string
	r.GET("/customers/:id", func(c *gin.Context) {
		seenID = GetRequestID(c.Request.Context())
		FromContext(c.Request.Context()).Info("handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customers/1?x=1", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", seenID)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, "handler", all[0].Message)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), all[1].ContextMap()["status"])
	assert.Equal(t, "x=1", all[1].ContextMap()["query"])
}

func TestGinMiddleware_GeneratesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(GinMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}
