package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// ContactRepository 站内消息数据访问接口
type ContactRepository interface {
	Create(message *models.ContactMessage) error
	List(filter ContactListFilter) ([]models.ContactMessage, error)
	UpdateStatus(id uint, updates map[string]interface{}) (int64, error)
}

// GormContactRepository GORM 实现
type GormContactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建站内消息仓库
func NewContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create 写入留言
func (r *GormContactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

// List 按状态、创建时间倒序列出留言
func (r *GormContactRepository) List(filter ContactListFilter) ([]models.ContactMessage, error) {
	query := r.db.Model(&models.ContactMessage{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var messages []models.ContactMessage
	if err := query.Order("status asc, created_at desc, id desc").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// UpdateStatus 更新处理状态
func (r *GormContactRepository) UpdateStatus(id uint, updates map[string]interface{}) (int64, error) {
	result := r.db.Model(&models.ContactMessage{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}
