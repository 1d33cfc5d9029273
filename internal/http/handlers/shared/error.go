package shared

import (
	"errors"

	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MappedError 业务错误到接口响应的映射规则
type MappedError struct {
	Target error
	Code   int
	Msg    string
}

// 通用分类映射，按顺序匹配
var categoryRules = []MappedError{
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Msg: "Invalid request"},
	{Target: service.ErrInvalidBook, Code: response.CodeBadRequest, Msg: "Invalid book in cart"},
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Msg: "Unauthorized"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Msg: "Forbidden"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Msg: "Not found"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Msg: "Conflict"},
}

// RequestLog 提供携带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(CtxRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应；5xx 记录原始错误且不向调用方暴露细节
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil && code >= response.CodeInternal {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// RespondServiceError 按规则表映射 service 错误
// 规则表优先，其次为字段校验、缺货与通用分类，其余按 500 处理。
func RespondServiceError(c *gin.Context, err error, rules ...MappedError) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Msg, nil)
			return
		}
	}

	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		RespondValidation(c, fieldErr.Fields)
		return
	}
	var stockErr *service.OutOfStockError
	if errors.As(err, &stockErr) {
		RespondError(c, response.CodeBadRequest, stockErr.Error(), nil)
		return
	}
	for _, rule := range categoryRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, messageOr(err, rule.Msg), nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, "Internal server error", err)
}

// RespondValidation 字段校验失败（data.fields）
func RespondValidation(c *gin.Context, fields map[string]string) {
	response.ErrorWithData(c, response.CodeBadRequest, "Validation failed", gin.H{"fields": fields})
}

// messageOr 取已分类错误的可读信息
func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
