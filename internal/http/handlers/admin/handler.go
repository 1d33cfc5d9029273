package admin

import (
	"strconv"

	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于管理端 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
