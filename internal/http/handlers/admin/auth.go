package admin

import (
	"time"

	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=40"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string    `json:"token"`
	Admin     AdminView `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminView 管理员信息
type AdminView struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsSuper     bool       `json:"is_super"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

var loginErrorRules = []shared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Msg: "Invalid username or password"},
}

var passwordErrorRules = []shared.MappedError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeBadRequest, Msg: "Old password is incorrect"},
}

func newAdminView(admin *models.Admin) AdminView {
	return AdminView{
		ID:          admin.ID,
		Username:    admin.Username,
		Role:        admin.Role,
		IsSuper:     admin.IsSuper,
		LastLoginAt: admin.LastLoginAt,
	}
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err, loginErrorRules...)
		return
	}
	shared.RequestLog(c).Infow("admin_login_succeeded", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{Token: token, Admin: newAdminView(admin), ExpiresAt: expiresAt})
}

// GetAdminMe 当前管理员
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := shared.RequireContextUint(c, shared.CtxAdminID)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(adminID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, newAdminView(admin))
}

// UpdateAdminPassword 修改管理员密码（旧 Token 全部失效）
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	adminID, ok := shared.RequireContextUint(c, shared.CtxAdminID)
	if !ok {
		return
	}
	var req UpdatePasswordRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		shared.RespondServiceError(c, err, passwordErrorRules...)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
