package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/gin-gonic/gin"
)

// SettingsHandler serves system settings. All routes except Public are admin only.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(s *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: s}
}

// List godoc
// @Summary      List settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.SettingView}
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	views, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, views, &common.Meta{Total: int64(len(views))})
}

// Get godoc
// @Summary      Get a setting
// @Tags         settings
// @Produce      json
// @Param        key  path      string  true  "setting key"
// @Success      200  {object}  common.APIResponse{data=domain.SettingView}
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, view, nil)
}

// Upsert godoc
// @Summary      Write a setting
// @Description  smtp_pass is always stored encrypted
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key      path      string                       true  "setting key"
// @Param        request  body      domain.UpsertSettingRequest  true  "value"
// @Success      200      {object}  common.APIResponse{data=domain.SettingView}
// @Failure      400      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /settings/{key} [put]
func (h *SettingsHandler) Upsert(c *gin.Context) {
	var req domain.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	view, err := h.service.Upsert(c.Request.Context(), c.Param("key"), req, middleware.GetRequester(c).UserID)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, view, nil)
}

// Delete godoc
// @Summary      Delete a setting
// @Tags         settings
// @Produce      json
// @Param        key  path      string  true  "setting key"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /settings/{key} [delete]
func (h *SettingsHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("key")); err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.MessageResponse(c, "Setting deleted")
}

// Public godoc
// @Summary      Read a public setting
// @Tags         settings
// @Produce      json
// @Param        key  path      string  true  "setting key"
// @Success      200  {object}  common.APIResponse{data=domain.PublicSetting}
// @Failure      403  {object}  common.APIResponse
// @Router       /settings/public/{key} [get]
func (h *SettingsHandler) Public(c *gin.Context) {
	setting, err := h.service.GetPublic(c.Request.Context(), c.Param("key"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, setting, nil)
}

// TestSMTP godoc
// @Summary      Test SMTP settings
// @Description  Blank fields fall back to the stored settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TestSMTPRequest  false  "overrides"
// @Success      200      {object}  common.APIResponse{data=service.TestSMTPResult}
// @Failure      400      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /settings/test-smtp [post]
func (h *SettingsHandler) TestSMTP(c *gin.Context) {
	var req domain.TestSMTPRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.service.TestSMTP(c.Request.Context(), req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// TestWebhook godoc
// @Summary      Test webhook settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TestWebhookRequest  false  "overrides"
// @Success      200      {object}  common.APIResponse{data=service.TestWebhookResult}
// @Failure      400      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /settings/test-webhook [post]
func (h *SettingsHandler) TestWebhook(c *gin.Context) {
	var req domain.TestWebhookRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.service.TestWebhook(c.Request.Context(), req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}
