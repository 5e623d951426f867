package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_LocalFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(nil, RateLimitConfig{RequestsPerMinute: 3, KeyPrefix: "t:", Message: "slow down"}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)
	}
	w := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "slow down")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, hit("10.0.0.2").Code)
}

func TestLocalLimiters_ResetWhenFull(t *testing.T) {
	l := newLocalLimiters(1)
	for i := 0; i < maxLocalLimiters; i++ {
		l.allow("k" + strconv.Itoa(i))
	}
	assert.LessOrEqual(t, len(l.limiters), maxLocalLimiters)
	assert.True(t, l.allow("fresh"))
}
