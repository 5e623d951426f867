package handler

import (
	"errors"
	"io"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// bindOptionalJSON binds the body into obj; an empty body leaves obj untouched
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return false
	}
	return true
}

// pathID reads a numeric :id parameter, writing a 400 on failure
func pathID(c *gin.Context) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil || id == 0 {
		common.ErrorResponse(c, 400, "Invalid id", nil)
		return 0, false
	}
	return id, true
}
