package service

import (
	"errors"
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const userLoginLogMaxUserAgent = 500

// UserLoginLogService 顾客登录记录
type UserLoginLogService struct {
	repo     repository.UserLoginLogRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserLoginLogService 创建登录记录服务
func NewUserLoginLogService(repo repository.UserLoginLogRepository, userRepo repository.UserRepository) *UserLoginLogService {
	return &UserLoginLogService{repo: repo, userRepo: userRepo, now: time.Now}
}

// LoginAttempt 一次登录尝试
type LoginAttempt struct {
	UserID    uint
	Email     string
	Err       error
	ClientIP  string
	UserAgent string
	RequestID string
}

// Record 写入登录记录；失败尝试会按邮箱反查顾客
func (s *UserLoginLogService) Record(attempt LoginAttempt) error {
	if s == nil || s.repo == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(attempt.Email))
	if email == "" {
		return nil
	}

	entry := &models.UserLoginLog{
		UserID:    attempt.UserID,
		Email:     email,
		Status:    constants.LoginLogStatusSuccess,
		ClientIP:  strings.TrimSpace(attempt.ClientIP),
		UserAgent: truncateRunes(strings.TrimSpace(attempt.UserAgent), userLoginLogMaxUserAgent),
		RequestID: strings.TrimSpace(attempt.RequestID),
		CreatedAt: s.now(),
	}
	if attempt.Err != nil {
		entry.Status = constants.LoginLogStatusFailed
		entry.FailReason = loginFailReason(attempt.Err)
		if entry.UserID == 0 && s.userRepo != nil {
			user, err := s.userRepo.GetByEmail(email)
			if err != nil {
				return err
			}
			if user != nil {
				entry.UserID = user.ID
			}
		}
	}
	return s.repo.Create(entry)
}

// ListByUser 顾客查看自己的登录记录
func (s *UserLoginLogService) ListByUser(userID uint, page, pageSize int) ([]models.UserLoginLog, int64, error) {
	if userID == 0 {
		return []models.UserLoginLog{}, 0, nil
	}
	return s.repo.List(repository.UserLoginLogListFilter{Page: page, PageSize: pageSize, UserID: userID})
}

// ListForAdmin 后台查询登录记录
func (s *UserLoginLogService) ListForAdmin(filter repository.UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.ClientIP = strings.TrimSpace(filter.ClientIP)
	return s.repo.List(filter)
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return constants.LoginFailReasonInvalidCredentials
	case errors.Is(err, ErrUserDisabled):
		return constants.LoginFailReasonDisabled
	default:
		return constants.LoginFailReasonInternal
	}
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
