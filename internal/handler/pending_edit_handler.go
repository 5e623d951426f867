package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/gin-gonic/gin"
)

// PendingEditHandler serves the edit review queue
type PendingEditHandler struct {
	service *service.PendingEditService
}

// NewPendingEditHandler creates a new PendingEditHandler
func NewPendingEditHandler(s *service.PendingEditService) *PendingEditHandler {
	return &PendingEditHandler{service: s}
}

// List godoc
// @Summary      List pending edits
// @Description  Admins see every pending edit; editors see their own
// @Tags         review
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.PendingEditView}
// @Failure      403  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits [get]
func (h *PendingEditHandler) List(c *gin.Context) {
	edits, err := h.service.List(c.Request.Context(), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, edits, &common.Meta{Total: int64(len(edits))})
}

// Get godoc
// @Summary      Pending edit detail
// @Description  The proposed fields next to the page's current ones
// @Tags         review
// @Produce      json
// @Param        id   path      int  true  "pending edit id"
// @Success      200  {object}  common.APIResponse{data=domain.PendingEditDetail}
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits/{id} [get]
func (h *PendingEditHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id, middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, detail, nil)
}

// Submit godoc
// @Summary      Propose an edit
// @Description  Replaces the caller's existing pending edit for the same page
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SubmitEditRequest  true  "proposed page"
// @Success      202      {object}  common.APIResponse{data=domain.PendingEditResult}
// @Failure      400      {object}  common.APIResponse
// @Failure      404      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits [post]
func (h *PendingEditHandler) Submit(c *gin.Context) {
	var req domain.SubmitEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), middleware.GetRequester(c), req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.AcceptedResponse(c, result)
}

// Approve godoc
// @Summary      Approve an edit
// @Tags         review
// @Produce      json
// @Param        id   path      int  true  "pending edit id"
// @Success      200  {object}  common.APIResponse{data=domain.ReviewResult}
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits/{id}/approve [post]
func (h *PendingEditHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.service.Approve(c.Request.Context(), id, middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Reject godoc
// @Summary      Reject an edit
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true   "pending edit id"
// @Param        request  body      domain.RejectRequest  false  "reason"
// @Success      200      {object}  common.APIResponse{data=domain.ReviewResult}
// @Failure      404      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits/{id}/reject [post]
func (h *PendingEditHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.service.Reject(c.Request.Context(), id, middleware.GetRequester(c), req.Reason)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Delete godoc
// @Summary      Withdraw a pending edit
// @Tags         review
// @Produce      json
// @Param        id   path      int  true  "pending edit id"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pending-edits/{id} [delete]
func (h *PendingEditHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.GetRequester(c)); err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.MessageResponse(c, "Pending edit deleted")
}
