package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerEmitsRouteFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()

	router := gin.New()
	router.Use(Logger(logger))
	router.GET("/api/v1/restaurants/:restaurantId/similar", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/7/similar", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Request completed", entry.Message)
	assert.Equal(t, "/api/v1/restaurants/:restaurantId/similar", entry.Data["route"])
	assert.Equal(t, "/api/v1/restaurants/7/similar", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, http.MethodGet, entry.Data["method"])
	assert.NotContains(t, entry.Data, "errors")
}

func TestRecoveryRepliesWithErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()

	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/boom", func(c *gin.Context) {
		panic("unreachable index")
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t,
		`{"error": {"code": "INTERNAL_SERVER_ERROR", "message": "Internal server error"}}`,
		recorder.Body.String())

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, "Handler panicked", hook.LastEntry().Message)
}
