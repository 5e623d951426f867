package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxRole     = "role"
)

// JWTAuth requires a valid access token
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := extractToken(c)
		if problem != "" {
			common.ErrorResponse(c, http.StatusUnauthorized, problem, nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", nil)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", nil)
			}
			c.Abort()
			return
		}
		if !setClaims(c, claims) {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalJWTAuth identifies the caller when a valid token is present and
// otherwise continues as anonymous. A bad token is treated the same as none.
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, problem := extractToken(c); problem == "" {
			if claims, err := jwtManager.VerifyToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter for websocket upgrades where browsers cannot set headers
func extractToken(c *gin.Context) (token, problem string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.GetHeader("Upgrade") != "" {
			return t, ""
		}
		return "", "Missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "Invalid authorization header format"
	}
	return strings.TrimSpace(parts[1]), ""
}

func setClaims(c *gin.Context, claims *jwt.Claims) bool {
	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return false
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return false
	}
	c.Set(ctxUserID, id)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, role)
	return true
}

// GetRequester returns the caller set by JWTAuth/OptionalJWTAuth, or an anonymous requester
func GetRequester(c *gin.Context) domain.Requester {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return domain.Anonymous()
	}
	userID, ok := id.(uint64)
	if !ok {
		return domain.Anonymous()
	}
	role, _ := c.Get(ctxRole)
	r, _ := role.(domain.Role)
	return domain.Requester{
		UserID:        userID,
		Username:      c.GetString(ctxUsername),
		Role:          r,
		Authenticated: true,
	}
}

// GetUserID returns the caller's ID as a string, or "" when anonymous
func GetUserID(c *gin.Context) string {
	return GetRequester(c).IDString()
}
