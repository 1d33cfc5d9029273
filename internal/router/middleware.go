package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/readrover/internal/authz"
	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader        = "X-Request-ID"
	adminIsSuperContextKey = "admin_is_super"
)

// RequestIDMiddleware 请求 ID 中间件（沿用调用方传入的 X-Request-ID）
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(shared.CtxRequestID, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 每个请求一条访问日志，5xx 记 warn，带 gin 错误时记 error
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case len(c.Errors) > 0:
			log.Error("request", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= http.StatusInternalServerError:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(shared.CtxRequestID)
}

// bearerToken 读取 Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

// AdminJWTAuthMiddleware 管理员 JWT 鉴权中间件
func AdminJWTAuthMiddleware(authService *service.AuthService, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing bearer token")
			return
		}
		claims, err := authService.ParseToken(tokenString)
		if err != nil || claims.AdminID == 0 {
			abortUnauthorized(c, "Invalid token")
			return
		}

		state, hit, cacheErr := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID)
		if cacheErr != nil || !hit || state == nil {
			admin, err := adminRepo.GetByID(claims.AdminID)
			if err != nil || admin == nil {
				abortUnauthorized(c, "Invalid token")
				return
			}
			state = cache.BuildAdminAuthState(admin)
			_ = cache.SetAdminAuthState(c.Request.Context(), state)
		}
		if claims.TokenVersion != state.TokenVersion {
			abortUnauthorized(c, "Token revoked")
			return
		}

		c.Set(shared.CtxAdminID, claims.AdminID)
		c.Set(shared.CtxAdminUsername, claims.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 casbin 鉴权（超级管理员跳过）
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSuper, ok := c.Get(adminIsSuperContextKey); ok {
			if superValue, typeOK := isSuper.(bool); typeOK && superValue {
				c.Next()
				return
			}
		}
		adminID, ok := shared.GetContextUint(c, shared.CtxAdminID)
		if !ok {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable", "admin_id", adminID)
			response.Forbidden(c, "Forbidden")
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			shared.RequestLog(c).Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Error(c, response.CodeInternal, "Internal server error")
			c.Abort()
			return
		}
		if !allowed {
			shared.RequestLog(c).Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 顾客 JWT 鉴权；required=false 时无 Token 或 Token 无效均按游客继续
func UserJWTAuthMiddleware(userAuth *service.UserAuthService, userRepo repository.UserRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			if required {
				abortUnauthorized(c, "Missing bearer token")
				return
			}
			c.Next()
			return
		}

		userID, email, reason := authenticateUser(c, userAuth, userRepo, tokenString)
		if reason != "" {
			if required {
				abortUnauthorized(c, reason)
				return
			}
			c.Next()
			return
		}
		c.Set(shared.CtxUserID, userID)
		c.Set("user_email", email)
		c.Next()
	}
}

// authenticateUser 校验 Token、账号状态与 Token 版本，失败返回原因
func authenticateUser(c *gin.Context, userAuth *service.UserAuthService, userRepo repository.UserRepository, tokenString string) (uint, string, string) {
	claims, err := userAuth.ParseToken(tokenString)
	if err != nil || claims.UserID == 0 {
		return 0, "", "Invalid token"
	}
	state, hit, cacheErr := cache.GetUserAuthState(c.Request.Context(), claims.UserID)
	if cacheErr != nil || !hit || state == nil {
		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			return 0, "", "Invalid token"
		}
		state = cache.BuildUserAuthState(user)
		_ = cache.SetUserAuthState(c.Request.Context(), state)
	}
	if !strings.EqualFold(strings.TrimSpace(state.Status), constants.UserStatusActive) {
		return 0, "", "Account disabled"
	}
	if claims.TokenVersion != state.TokenVersion {
		return 0, "", "Token revoked"
	}
	return claims.UserID, claims.Email, ""
}
