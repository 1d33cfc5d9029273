package service

import (
	"strings"
	"time"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

// AdminAuditInput 审计记录输入
type AdminAuditInput struct {
	AdminID       uint
	AdminUsername string
	Action        string
	TargetType    string
	TargetID      string
	RequestID     string
	Detail        models.JSON
}

// AdminAuditService 后台操作审计
type AdminAuditService struct {
	repo repository.AdminAuditLogRepository
	now  func() time.Time
}

// NewAdminAuditService 创建审计服务
func NewAdminAuditService(repo repository.AdminAuditLogRepository) *AdminAuditService {
	return &AdminAuditService{repo: repo, now: time.Now}
}

// Record 写入审计日志，缺少操作人或操作类型时忽略
func (s *AdminAuditService) Record(input AdminAuditInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if input.AdminID == 0 || action == "" {
		return nil
	}
	return s.repo.Create(&models.AdminAuditLog{
		AdminID:       input.AdminID,
		AdminUsername: strings.TrimSpace(input.AdminUsername),
		Action:        action,
		TargetType:    strings.TrimSpace(input.TargetType),
		TargetID:      strings.TrimSpace(input.TargetID),
		RequestID:     strings.TrimSpace(input.RequestID),
		Detail:        input.Detail,
		CreatedAt:     s.now(),
	})
}

// List 审计日志列表
func (s *AdminAuditService) List(filter repository.AdminAuditListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	filter.Action = strings.TrimSpace(filter.Action)
	filter.TargetType = strings.TrimSpace(filter.TargetType)
	filter.TargetID = strings.TrimSpace(filter.TargetID)
	return s.repo.List(filter)
}
