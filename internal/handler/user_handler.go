package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler serves admin account management
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.User}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, users, &common.Meta{Total: int64(len(users))})
}

// Create godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateUserRequest  true  "user"
// @Success      201      {object}  common.APIResponse{data=domain.User}
// @Failure      400      {object}  common.APIResponse
// @Failure      409      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), middleware.GetRequester(c), req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.CreatedResponse(c, user)
}

// ChangeRole godoc
// @Summary      Change a user's role
// @Description  Admins cannot change their own role or demote the last admin
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "user id"
// @Param        request  body      domain.UpdateRoleRequest  true  "role"
// @Success      200      {object}  common.APIResponse{data=domain.User}
// @Failure      400      {object}  common.APIResponse
// @Failure      403      {object}  common.APIResponse
// @Failure      404      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	user, err := h.service.ChangeRole(c.Request.Context(), middleware.GetRequester(c), id, req.Role)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}

// Delete godoc
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "user id"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetRequester(c), id); err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.MessageResponse(c, "User deleted")
}
