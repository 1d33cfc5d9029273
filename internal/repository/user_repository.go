package repository

import (
	"time"

	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// UserRepository 顾客数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	TouchLastLogin(id uint, at time.Time) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return firstOrNil[models.User](r.db.Where("email = ?", email))
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return firstOrNil[models.User](r.db, id)
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// TouchLastLogin 记录最后登录时间
func (r *GormUserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}
