package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges a username and password for an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "credentials"
// @Success      200      {object}  common.APIResponse{data=domain.AuthResponse}
// @Failure      400      {object}  common.APIResponse
// @Failure      401      {object}  common.APIResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// Register godoc
// @Summary      Register
// @Description  Creates an account. The first account becomes admin; later ones need an invitation token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RegisterRequest  true  "registration"
// @Success      201      {object}  common.APIResponse{data=domain.AuthResponse}
// @Failure      400      {object}  common.APIResponse
// @Failure      403      {object}  common.APIResponse
// @Failure      404      {object}  common.APIResponse
// @Failure      409      {object}  common.APIResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.CreatedResponse(c, resp)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=domain.User}
// @Failure      401  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	req := middleware.GetRequester(c)
	if !req.Authenticated {
		common.HandleServiceError(c, common.ErrAuthRequired)
		return
	}

	user, err := h.service.Me(c.Request.Context(), req.UserID)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}
