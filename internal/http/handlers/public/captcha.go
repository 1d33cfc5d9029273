package public

import (
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCaptchaConfig 前台验证码配置
func (h *Handler) GetCaptchaConfig(c *gin.Context) {
	response.Success(c, h.CaptchaService.PublicSetting())
}

// GetCaptchaImage 生成图片验证码
func (h *Handler) GetCaptchaImage(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "Captcha unavailable", err)
		return
	}
	response.Success(c, challenge)
}
