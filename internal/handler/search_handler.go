package handler

import (
	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/service"
	"github.com/damoang/angple-wiki/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// SearchHandler handles page search
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
// @Summary      Search pages
// @Description  Ranked full-text search over published pages, title matches first
// @Tags         search
// @Produce      json
// @Param        q    query     string  true  "search terms"
// @Success      200  {object}  common.APIResponse{data=[]domain.SearchResult}
// @Failure      400  {object}  common.APIResponse
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	q := ginutil.QueryTrimmed(c, "q")

	results, err := h.searchService.Search(c.Request.Context(), q, middleware.GetRequester(c))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessResponse(c, results, &common.Meta{Total: int64(len(results)), Query: q})
}
