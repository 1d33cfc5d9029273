package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// UserLoginLogRepository 登录记录数据访问
type UserLoginLogRepository interface {
	Create(log *models.UserLoginLog) error
	List(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error)
}

// GormUserLoginLogRepository GORM 实现
type GormUserLoginLogRepository struct {
	db *gorm.DB
}

// NewUserLoginLogRepository 创建登录记录仓库
func NewUserLoginLogRepository(db *gorm.DB) *GormUserLoginLogRepository {
	return &GormUserLoginLogRepository{db: db}
}

// Create 写入登录记录
func (r *GormUserLoginLogRepository) Create(log *models.UserLoginLog) error {
	return r.db.Create(log).Error
}

// List 按条件分页查询，最新在前
func (r *GormUserLoginLogRepository) List(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	query := r.db.Model(&models.UserLoginLog{})
	query = whereEq(query, "user_id", filter.UserID)
	query = whereEq(query, "email", filter.Email)
	query = whereEq(query, "status", filter.Status)
	query = whereEq(query, "client_ip", filter.ClientIP)
	return findPage[models.UserLoginLog](query, filter.Page, filter.PageSize, "id DESC")
}
