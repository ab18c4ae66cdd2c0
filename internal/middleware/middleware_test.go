package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/observability"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Identity())
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetInt("userID"),
			"request_id":  c.GetString(RequestIDKey),
			"ctx_request": observability.RequestIDFromContext(c.Request.Context()),
		})
	})
	return r
}

func TestIdentityRejectsMissingOrInvalidHeader(t *testing.T) {
	router := setupRouter()

	for _, header := range []string{"", "abc", "0", "-4"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set(UserIDHeader, header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestIdentityAndRequestIDPropagate(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(UserIDHeader, "12")
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":12,"request_id":"req-abc","ctx_request":"req-abc"}`, rec.Body.String())
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsGeneratedWhenAbsent(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(UserIDHeader, "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}
