package public

import (
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/provider"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 前台/公开接口处理器
// 说明：该处理器仅用于前台、游客、顾客侧 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// verifyCaptcha 按场景校验验证码，失败时已写出响应
func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload *shared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.ToServicePayload()); err != nil {
		shared.RespondServiceError(c, err, captchaErrorRules...)
		return false
	}
	return true
}

var captchaErrorRules = []shared.MappedError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Msg: "Captcha required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Msg: "Captcha invalid"},
}
