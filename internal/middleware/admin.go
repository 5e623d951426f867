package middleware

import (
	"net/http"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/gin-gonic/gin"
)

// RequireAdmin allows only authenticated admins. Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRequester(c).IsAdmin() {
			common.ErrorResponse(c, http.StatusForbidden, common.ClientMessage(common.ErrAdminRequired), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireEditor allows editors and admins
func RequireEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := GetRequester(c)
		if !req.Authenticated || !req.Role.CanWrite() {
			common.ErrorResponse(c, http.StatusForbidden, common.ClientMessage(common.ErrEditorRequired), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
