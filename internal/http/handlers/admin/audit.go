package admin

import (
	"strconv"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// recordAudit 写入审计日志，失败只记录告警
func (h *Handler) recordAudit(c *gin.Context, action, targetType, targetID string, detail models.JSON) {
	adminID, _ := shared.GetContextUint(c, shared.CtxAdminID)
	input := service.AdminAuditInput{
		AdminID:       adminID,
		AdminUsername: c.GetString(shared.CtxAdminUsername),
		Action:        action,
		TargetType:    targetType,
		TargetID:      targetID,
		RequestID:     c.GetString(shared.CtxRequestID),
		Detail:        detail,
	}
	if err := h.AuditService.Record(input); err != nil {
		shared.RequestLog(c).Warnw("admin_audit_record_failed", "action", action, "target_id", targetID, "error", err)
	}
}

// ListAuditLogs 审计日志列表
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	adminID, _ := strconv.ParseUint(c.Query("admin_id"), 10, 64)
	logs, total, err := h.AuditService.List(repository.AdminAuditListFilter{
		Page:       page,
		PageSize:   pageSize,
		AdminID:    uint(adminID),
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   c.Query("target_id"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, logs, shared.BuildPagination(page, pageSize, total))
}

// ListUserLoginLogs 顾客登录记录
func (h *Handler) ListUserLoginLogs(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	logs, total, err := h.LoginLogService.ListForAdmin(repository.UserLoginLogListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Email:    c.Query("email"),
		Status:   c.Query("status"),
		ClientIP: c.Query("client_ip"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, logs, shared.BuildPagination(page, pageSize, total))
}
