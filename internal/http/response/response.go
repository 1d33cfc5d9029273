package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// status_code 成功为 0，失败与 HTTP 状态码一致
const (
	CodeOK              = 0
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeConflict        = http.StatusConflict
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeInternal        = http.StatusInternalServerError
)

const (
	msgSuccess      = "success"
	requestIDCtxKey = "request_id"
)

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: msgSuccess, Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{StatusCode: CodeOK, Msg: msgSuccess, Data: data})
}

// SuccessWithPage 200，附带分页信息
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{StatusCode: CodeOK, Msg: msgSuccess, Data: data, Pagination: pagination})
}

// Error 失败响应，data 中带上 request_id
func Error(c *gin.Context, code int, msg string) {
	ErrorWithData(c, code, msg, nil)
}

// ErrorWithData 失败响应；非 4xx/5xx 的 code 按 500 处理
func ErrorWithData(c *gin.Context, code int, msg string, data gin.H) {
	if code < 400 || code > 599 {
		code = CodeInternal
	}
	if id := c.GetString(requestIDCtxKey); id != "" {
		if data == nil {
			data = gin.H{}
		}
		if _, exists := data["request_id"]; !exists {
			data["request_id"] = id
		}
	}
	var payload interface{}
	if data != nil {
		payload = data
	}
	c.JSON(code, Response{StatusCode: code, Msg: msg, Data: payload})
}

// BadRequest 400
func BadRequest(c *gin.Context, msg string) { Error(c, CodeBadRequest, msg) }

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) { Error(c, CodeUnauthorized, msg) }

// Forbidden 403
func Forbidden(c *gin.Context, msg string) { Error(c, CodeForbidden, msg) }

// NotFound 404
func NotFound(c *gin.Context, msg string) { Error(c, CodeNotFound, msg) }

// Conflict 409
func Conflict(c *gin.Context, msg string) { Error(c, CodeConflict, msg) }
