package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(review *models.Review) error
	Aggregate(bookID uint) (sum int64, count int64, err error)
	ListByBook(bookID uint, limit int) ([]models.Review, error)
	WithTx(tx *gorm.DB) ReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// Create 写入评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Aggregate 统计评分总和与人数
func (r *GormReviewRepository) Aggregate(bookID uint) (int64, int64, error) {
	var row struct {
		Total int64
		Count int64
	}
	if err := r.db.Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) as total, COUNT(*) as count").
		Where("book_id = ?", bookID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Total, row.Count, nil
}

// ListByBook 最新评价
func (r *GormReviewRepository) ListByBook(bookID uint, limit int) ([]models.Review, error) {
	query := r.db.Where("book_id = ?", bookID).Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
