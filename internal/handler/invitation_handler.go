package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/gin-gonic/gin"
)

// InvitationHandler serves invitation management and token validation
type InvitationHandler struct {
	service *service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(s *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: s}
}

// List godoc
// @Summary      List invitations
// @Tags         invitations
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.InvitationView}
// @Security     BearerAuth
// @Router       /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context(), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, rows, &common.Meta{Total: int64(len(rows))})
}

// Create godoc
// @Summary      Invite a user
// @Description  Notification failures are reported in the response body; the invitation is still created.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateInvitationRequest  true  "invitation"
// @Success      201      {object}  common.APIResponse{data=domain.InvitationResult}
// @Failure      400      {object}  common.APIResponse
// @Failure      409      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	var req domain.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), middleware.GetRequester(c), req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.CreatedResponse(c, result)
}

// Revoke godoc
// @Summary      Revoke an invitation
// @Tags         invitations
// @Produce      json
// @Param        id   path      int  true  "invitation id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /invitations/{id} [delete]
func (h *InvitationHandler) Revoke(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), middleware.GetRequester(c), id); err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.MessageResponse(c, "Invitation revoked")
}

// Validate godoc
// @Summary      Check an invitation token
// @Tags         invitations
// @Produce      json
// @Param        token  path      string  true  "invitation token"
// @Success      200    {object}  common.APIResponse{data=domain.InvitationCheck}
// @Failure      404    {object}  common.APIResponse
// @Router       /invitations/validate/{token} [get]
func (h *InvitationHandler) Validate(c *gin.Context) {
	check, err := h.service.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, check, nil)
}
