package admin

import (
	"strconv"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UpdateMessageStatusRequest 修改留言状态
type UpdateMessageStatusRequest struct {
	ID     uint   `json:"id" binding:"required,min=1"`
	Status string `json:"status" binding:"required"`
}

// ListMessages 收件箱（status 筛选，take 10..200）
func (h *Handler) ListMessages(c *gin.Context) {
	take, _ := strconv.Atoi(c.DefaultQuery("take", "50"))
	messages, err := h.ContactService.ListInbox(c.Query("status"), take)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, messages)
}

// UpdateMessageStatus 修改留言处理状态
func (h *Handler) UpdateMessageStatus(c *gin.Context) {
	var req UpdateMessageStatusRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if err := h.ContactService.UpdateStatus(req.ID, req.Status); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
