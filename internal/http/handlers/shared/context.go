package shared

import (
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	CtxRequestID     = "request_id"
	CtxUserID        = "user_id"
	CtxAdminID       = "admin_id"
	CtxAdminUsername = "admin_username"
)

// GetContextUint 读取上下文中的 uint 值
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case int:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

// RequireContextUint 读取必需的 uint 上下文值，缺失时返回 401
func RequireContextUint(c *gin.Context, key string) (uint, bool) {
	id, ok := GetContextUint(c, key)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return 0, false
	}
	return id, true
}

// OptionalUserID 可选登录用户 ID（游客返回 nil）
func OptionalUserID(c *gin.Context) *uint {
	id, ok := GetContextUint(c, CtxUserID)
	if !ok {
		return nil
	}
	return &id
}
