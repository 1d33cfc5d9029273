package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// AdminAuditLogRepository 后台审计日志数据访问接口
type AdminAuditLogRepository interface {
	Create(log *models.AdminAuditLog) error
	List(filter AdminAuditListFilter) ([]models.AdminAuditLog, int64, error)
}

// GormAdminAuditLogRepository GORM 实现
type GormAdminAuditLogRepository struct {
	db *gorm.DB
}

// NewAdminAuditLogRepository 创建审计日志仓库
func NewAdminAuditLogRepository(db *gorm.DB) *GormAdminAuditLogRepository {
	return &GormAdminAuditLogRepository{db: db}
}

// Create 写入审计日志
func (r *GormAdminAuditLogRepository) Create(log *models.AdminAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 按条件分页查询（最新在前）
func (r *GormAdminAuditLogRepository) List(filter AdminAuditListFilter) ([]models.AdminAuditLog, int64, error) {
	query := r.db.Model(&models.AdminAuditLog{})
	query = whereEq(query, "admin_id", filter.AdminID)
	query = whereEq(query, "action", filter.Action)
	query = whereEq(query, "target_type", filter.TargetType)
	query = whereEq(query, "target_id", filter.TargetID)
	return findPage[models.AdminAuditLog](query, filter.Page, filter.PageSize, "id DESC")
}
