package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsletterRepository 邮件订阅数据访问接口
type NewsletterRepository interface {
	Subscribe(subscriber *models.NewsletterSubscriber) (created bool, err error)
}

// GormNewsletterRepository GORM 实现
type GormNewsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository 创建订阅仓库
func NewNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

// Subscribe 幂等订阅，已存在时返回 created=false
func (r *GormNewsletterRepository) Subscribe(subscriber *models.NewsletterSubscriber) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(subscriber)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
