package public

import (
	"errors"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string                        `json:"name" binding:"required,min=2,max=60"`
	Email    string                        `json:"email" binding:"required,email,max=200"`
	Password string                        `json:"password" binding:"required,min=8,max=72"`
	Captcha  *shared.CaptchaPayloadRequest `json:"captcha"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// UserView 顾客信息
type UserView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authPayload struct {
	User      UserView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newUserView(user *models.User) UserView {
	return UserView{ID: user.ID, Name: user.Name, Email: user.Email, Role: constants.UserRoleUser}
}

// Register 顾客注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.Captcha) {
		return
	}
	user, token, expiresAt, err := h.UserAuthService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, authPayload{User: newUserView(user), Token: token, ExpiresAt: expiresAt})
}

// Login 顾客登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password)
	attempt := service.LoginAttempt{
		Email:     req.Email,
		Err:       err,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString(shared.CtxRequestID),
	}
	if user != nil {
		attempt.UserID = user.ID
	}
	if logErr := h.LoginLogService.Record(attempt); logErr != nil {
		shared.RequestLog(c).Warnw("user_login_log_record_failed", "error", logErr)
	}
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, authPayload{User: newUserView(user), Token: token, ExpiresAt: expiresAt})
}

// Me 当前顾客（未登录返回 user: null）
func (h *Handler) Me(c *gin.Context) {
	userID, ok := shared.GetContextUint(c, shared.CtxUserID)
	if !ok {
		response.Success(c, gin.H{"user": nil})
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if errors.Is(err, service.ErrNotFound) {
		response.Success(c, gin.H{"user": nil})
		return
	}
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"user": newUserView(user)})
}

// ListLoginHistory 当前顾客的登录记录
func (h *Handler) ListLoginHistory(c *gin.Context) {
	userID, ok := shared.RequireContextUint(c, shared.CtxUserID)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)
	logs, total, err := h.LoginLogService.ListByUser(userID, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, logs, shared.BuildPagination(page, pageSize, total))
}
