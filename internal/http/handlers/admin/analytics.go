package admin

import (
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAnalytics 统计总览（refresh=1 跳过缓存）
func (h *Handler) GetAnalytics(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	overview, err := h.AnalyticsService.Overview(c.Request.Context(), forceRefresh)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, overview)
}
