package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-32-bytes!!"

func newAuthRouter(mw gin.HandlerFunc, seen *domain.Requester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/test", func(c *gin.Context) {
		*seen = GetRequester(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	m := jwt.NewManager(testSecret, time.Hour)
	token, err := m.GenerateToken("42", "alice", "editor")
	require.NoError(t, err)

	var seen domain.Requester
	r := newAuthRouter(JWTAuth(m), &seen)

	w := do(r, "/test", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, domain.Requester{UserID: 42, Username: "alice", Role: domain.RoleEditor, Authenticated: true}, seen)

	tests := []struct {
		name    string
		target  string
		headers map[string]string
	}{
		{"missing header", "/test", nil},
		{"wrong scheme", "/test", map[string]string{"Authorization": "Basic " + token}},
		{"garbage token", "/test", map[string]string{"Authorization": "Bearer nope"}},
		{"query token without upgrade", "/test?token=" + token, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.target, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestJWTAuth_QueryTokenOnUpgrade(t *testing.T) {
	m := jwt.NewManager(testSecret, time.Hour)
	token, err := m.GenerateToken("7", "root", "admin")
	require.NoError(t, err)

	var seen domain.Requester
	r := newAuthRouter(JWTAuth(m), &seen)

	w := do(r, "/test?token="+token, map[string]string{"Upgrade": "websocket", "Connection": "Upgrade"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, seen.IsAdmin())
}

func TestJWTAuth_RejectsUnknownRole(t *testing.T) {
	m := jwt.NewManager(testSecret, time.Hour)
	token, err := m.GenerateToken("7", "root", "superuser")
	require.NoError(t, err)

	var seen domain.Requester
	w := do(newAuthRouter(JWTAuth(m), &seen), "/test", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	m := jwt.NewManager(testSecret, time.Hour)
	token, err := m.GenerateToken("3", "vic", "viewer")
	require.NoError(t, err)

	var seen domain.Requester
	r := newAuthRouter(OptionalJWTAuth(m), &seen)

	w := do(r, "/test", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, seen.Authenticated)

	w = do(r, "/test", map[string]string{"Authorization": "Bearer broken"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, seen.Authenticated)

	w = do(r, "/test", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uint64(3), seen.UserID)
	assert.Equal(t, domain.RoleViewer, seen.Role)
}
