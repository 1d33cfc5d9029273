package service

import (
	"context"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const defaultUserTokenHours = 14 * 24

// UserClaims 顾客 Token 声明
type UserClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// UserAuthService 顾客注册登录
type UserAuthService struct {
	tokens   tokenIssuer
	policy   config.PasswordPolicyConfig
	userRepo repository.UserRepository
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		tokens:   newTokenIssuer(cfg.UserJWT, defaultUserTokenHours, audienceUser),
		policy:   cfg.Security.PasswordPolicy,
		userRepo: userRepo,
	}
}

// IssueToken 为顾客签发 Token
func (s *UserAuthService) IssueToken(user *models.User) (string, time.Time, error) {
	return s.tokens.sign(UserClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             constants.UserRoleUser,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: s.tokens.registered(strconv.FormatUint(uint64(user.ID), 10)),
	})
}

// ParseToken 校验顾客 Token
func (s *UserAuthService) ParseToken(raw string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := s.tokens.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Register 注册并直接登录
func (s *UserAuthService) Register(name, email, password string) (*models.User, string, time.Time, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 2 || n > 60 {
		return nil, "", time.Time{}, NewFieldError("name", "length must be between 2 and 60")
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.policy, password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailTaken
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	user := &models.User{
		Name:         name,
		Email:        normalized,
		PasswordHash: hashedPassword,
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, "", time.Time{}, ErrEmailTaken
		}
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	logger.Infow("user_registered", "user_id", user.ID)
	return user, token, expiresAt, nil
}

// Login 邮箱密码登录
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_touch_last_login_failed", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// GetUserByID 获取用户
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// NormalizeEmail 校验并转为小写
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" || len(trimmed) > 200 {
		return "", NewFieldError("email", "invalid email")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", NewFieldError("email", "invalid email")
	}
	return trimmed, nil
}
