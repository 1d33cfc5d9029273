package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const defaultAdminTokenHours = 24

// AdminClaims 管理员 Token 声明
type AdminClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AuthService 管理员登录与改密
type AuthService struct {
	tokens    tokenIssuer
	policy    config.PasswordPolicyConfig
	adminRepo repository.AdminRepository
}

// NewAuthService 创建管理员认证服务
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		tokens:    newTokenIssuer(cfg.JWT, defaultAdminTokenHours, audienceAdmin),
		policy:    cfg.Security.PasswordPolicy,
		adminRepo: adminRepo,
	}
}

// IssueToken 为管理员签发 Token
func (s *AuthService) IssueToken(admin *models.Admin) (string, time.Time, error) {
	return s.tokens.sign(AdminClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		TokenVersion:     admin.TokenVersion,
		RegisteredClaims: s.tokens.registered(strconv.FormatUint(uint64(admin.ID), 10)),
	})
}

// ParseToken 校验管理员 Token
func (s *AuthService) ParseToken(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := s.tokens.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Login 用户名密码登录，成功后记录登录时间
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || VerifyPassword(admin.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.IssueToken(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	s.refreshAuthState(admin)
	return admin, token, expiresAt, nil
}

// GetAdmin 获取管理员
func (s *AuthService) GetAdmin(adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// ChangePassword 校验旧密码后更新，已签发的 Token 随版本号递增失效
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}
	if VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.policy, newPassword); err != nil {
		return err
	}
	if admin.PasswordHash, err = HashPassword(newPassword); err != nil {
		return err
	}
	admin.TokenVersion++
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	s.refreshAuthState(admin)
	return nil
}

func (s *AuthService) refreshAuthState(admin *models.Admin) {
	if err := cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
}
