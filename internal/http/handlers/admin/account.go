package admin

import (
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAdminRequest 创建管理员
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required,min=3,max=40"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required"`
}

// UpdateAdminRoleRequest 修改管理员角色
type UpdateAdminRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListAdmins 管理员列表
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AdminAccounts.List()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	views := make([]AdminView, 0, len(admins))
	for i := range admins {
		views = append(views, newAdminView(&admins[i]))
	}
	response.Success(c, views)
}

// CreateAdmin 创建管理员
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	admin, err := h.AdminAccounts.Create(service.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionAdminCreate, "admin", admin.Username, models.JSON{"role": admin.Role})
	response.Created(c, newAdminView(admin))
}

// UpdateAdminRole 修改管理员角色（不允许修改自己）
func (h *Handler) UpdateAdminRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateAdminRoleRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if operatorID, _ := shared.GetContextUint(c, shared.CtxAdminID); operatorID == id {
		response.Forbidden(c, "Cannot change your own role")
		return
	}
	admin, err := h.AdminAccounts.UpdateRole(id, req.Role)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionAdminRoleUpdate, "admin", admin.Username, models.JSON{"role": admin.Role})
	response.Success(c, newAdminView(admin))
}
