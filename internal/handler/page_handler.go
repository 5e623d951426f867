package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/damoang/angple-wiki/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

const (
	defaultRejectionLimit = 50
	maxRejectionLimit     = 200
)

// PageHandler serves the page endpoints
type PageHandler struct {
	service *service.PageService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(s *service.PageService) *PageHandler {
	return &PageHandler{service: s}
}

// List godoc
// @Summary      List pages
// @Description  Pages visible to the caller. Anonymous callers only see published public pages.
// @Tags         pages
// @Produce      json
// @Param        sort  query     string  false  "alphabetical | category | recent | creator | custom"
// @Success      200   {object}  common.APIResponse{data=[]domain.PageWithAuthor}
// @Failure      400   {object}  common.APIResponse
// @Router       /pages [get]
func (h *PageHandler) List(c *gin.Context) {
	order, err := service.ParseSortOrder(c.Query("sort"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	pages, err := h.service.ListVisiblePages(c.Request.Context(), middleware.GetRequester(c), order)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, pages, &common.Meta{Total: int64(len(pages)), Sort: string(order)})
}

// Get godoc
// @Summary      Get a page
// @Tags         pages
// @Produce      json
// @Param        slug  path      string  true  "page slug"
// @Success      200   {object}  common.APIResponse{data=domain.PageWithAuthor}
// @Failure      404   {object}  common.APIResponse
// @Router       /pages/{slug} [get]
func (h *PageHandler) Get(c *gin.Context) {
	page, err := h.service.GetVisiblePage(c.Request.Context(), c.Param("slug"), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, page, nil)
}

// Revisions godoc
// @Summary      Page history
// @Description  Snapshots taken before each overwrite, newest first
// @Tags         pages
// @Produce      json
// @Param        slug  path      string  true  "page slug"
// @Success      200   {object}  common.APIResponse{data=[]domain.RevisionWithAuthor}
// @Failure      404   {object}  common.APIResponse
// @Router       /pages/{slug}/revisions [get]
func (h *PageHandler) Revisions(c *gin.Context) {
	revs, err := h.service.ListRevisions(c.Request.Context(), c.Param("slug"), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, revs, &common.Meta{Total: int64(len(revs))})
}

// Create godoc
// @Summary      Create a page
// @Description  Editors' pages stay unpublished (requires_approval) while the approval workflow is on
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        request  body      domain.PageInput  true  "page"
// @Success      201      {object}  common.APIResponse{data=domain.PageMutation}
// @Failure      400      {object}  common.APIResponse
// @Failure      403      {object}  common.APIResponse
// @Failure      409      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages [post]
func (h *PageHandler) Create(c *gin.Context) {
	var in domain.PageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	result, err := h.service.CreatePage(c.Request.Context(), middleware.GetRequester(c), in)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.CreatedResponse(c, result)
}

// Update godoc
// @Summary      Update a page
// @Description  Applies the change directly, or queues it as a pending edit (202) when the editor needs approval
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        slug     path      string            true  "page slug"
// @Param        request  body      domain.PageInput  true  "page"
// @Success      200      {object}  common.APIResponse{data=domain.PageMutation}
// @Success      202      {object}  common.APIResponse{data=domain.PendingEditResult}
// @Failure      400      {object}  common.APIResponse
// @Failure      403      {object}  common.APIResponse
// @Failure      404      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages/{slug} [put]
func (h *PageHandler) Update(c *gin.Context) {
	var in domain.PageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	outcome, err := h.service.UpdatePage(c.Request.Context(), middleware.GetRequester(c), c.Param("slug"), in)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	if outcome.Pending != nil {
		common.AcceptedResponse(c, outcome.Pending)
		return
	}
	common.SuccessResponse(c, outcome.Page, nil)
}

// Delete godoc
// @Summary      Delete a page
// @Tags         pages
// @Produce      json
// @Param        slug  path      string  true  "page slug"
// @Success      200   {object}  common.APIResponse
// @Failure      403   {object}  common.APIResponse
// @Failure      404   {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages/{slug} [delete]
func (h *PageHandler) Delete(c *gin.Context) {
	if err := h.service.DeletePage(c.Request.Context(), middleware.GetRequester(c), c.Param("slug")); err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.MessageResponse(c, "Page deleted")
}

// Reorder godoc
// @Summary      Set display order
// @Tags         pages
// @Accept       json
// @Produce      json
// @Param        slug     path      string                 true  "page slug"
// @Param        request  body      domain.ReorderRequest  true  "order"
// @Success      200      {object}  common.APIResponse{data=domain.Page}
// @Failure      400      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages/order/{slug} [put]
func (h *PageHandler) Reorder(c *gin.Context) {
	var req domain.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	page, err := h.service.Reorder(c.Request.Context(), middleware.GetRequester(c), c.Param("slug"), req.DisplayOrder)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, page, nil)
}

// ListUnpublished godoc
// @Summary      Pages awaiting approval
// @Tags         review
// @Produce      json
// @Success      200  {object}  common.APIResponse{data=[]domain.PageWithAuthor}
// @Security     BearerAuth
// @Router       /pages/unpublished/list [get]
func (h *PageHandler) ListUnpublished(c *gin.Context) {
	pages, err := h.service.ListUnpublished(c.Request.Context(), middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, pages, &common.Meta{Total: int64(len(pages))})
}

// Publish godoc
// @Summary      Publish a page
// @Tags         review
// @Produce      json
// @Param        slug  path      string  true  "page slug"
// @Success      200   {object}  common.APIResponse{data=domain.Page}
// @Failure      400   {object}  common.APIResponse
// @Failure      404   {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages/{slug}/publish [post]
func (h *PageHandler) Publish(c *gin.Context) {
	page, err := h.service.Publish(c.Request.Context(), middleware.GetRequester(c), c.Param("slug"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, page, nil)
}

// Reject godoc
// @Summary      Reject a page
// @Description  Deletes an unpublished page and records the rejection
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        slug     path      string                true   "page slug"
// @Param        request  body      domain.RejectRequest  false  "reason"
// @Success      200      {object}  common.APIResponse{data=domain.PublishResult}
// @Failure      400      {object}  common.APIResponse
// @Failure      404      {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /pages/{slug}/reject [post]
func (h *PageHandler) Reject(c *gin.Context) {
	var req domain.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.service.Reject(c.Request.Context(), middleware.GetRequester(c), c.Param("slug"), req.Reason)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Rejections godoc
// @Summary      Recent page rejections
// @Tags         review
// @Produce      json
// @Param        limit  query     int  false  "max rows (default 50, max 200)"
// @Success      200    {object}  common.APIResponse{data=[]domain.PageRejection}
// @Security     BearerAuth
// @Router       /pages/rejections [get]
func (h *PageHandler) Rejections(c *gin.Context) {
	limit := ginutil.QueryInt(c, "limit", defaultRejectionLimit)
	if limit < 1 || limit > maxRejectionLimit {
		limit = defaultRejectionLimit
	}

	rows, err := h.service.ListRejections(c.Request.Context(), middleware.GetRequester(c), limit)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, rows, &common.Meta{Total: int64(len(rows))})
}
