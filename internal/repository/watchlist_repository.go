package repository

import (
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepository 关注列表数据访问接口
type WatchlistRepository interface {
	Upsert(item *models.WatchlistItem) error
	List(email string, userID uint, limit int) ([]models.WatchlistItem, error)
	Remove(bookID uint, email string, userID uint) (int64, error)
}

// GormWatchlistRepository GORM 实现
type GormWatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository 创建关注列表仓库
func NewWatchlistRepository(db *gorm.DB) *GormWatchlistRepository {
	return &GormWatchlistRepository{db: db}
}

// Upsert 按 (email, book_id) 去重写入，已存在时补全 user_id
func (r *GormWatchlistRepository) Upsert(item *models.WatchlistItem) error {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "book_id"}},
		DoNothing: true,
	}
	if item.UserID != nil {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
		}
	}
	return r.db.Omit("Book").Clauses(onConflict).Create(item).Error
}

// List 登录用户按 user_id 或 email 查询，游客按 email 查询
func (r *GormWatchlistRepository) List(email string, userID uint, limit int) ([]models.WatchlistItem, error) {
	query := r.db.Model(&models.WatchlistItem{})
	switch {
	case userID > 0 && email != "":
		query = query.Where("(user_id = ? OR email = ?)", userID, email)
	case userID > 0:
		query = query.Where("user_id = ?", userID)
	default:
		query = query.Where("email = ?", email)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []models.WatchlistItem
	if err := query.
		Preload("Book", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "slug", "title", "price", "sale_price", "cover_url", "stock")
		}).
		Order("created_at desc, id desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Remove 删除关注项
func (r *GormWatchlistRepository) Remove(bookID uint, email string, userID uint) (int64, error) {
	query := r.db.Where("book_id = ?", bookID)
	switch {
	case userID > 0 && email != "":
		query = query.Where("(user_id = ? OR email = ?)", userID, email)
	case userID > 0:
		query = query.Where("user_id = ?", userID)
	default:
		query = query.Where("email = ?", email)
	}
	result := query.Delete(&models.WatchlistItem{})
	return result.RowsAffected, result.Error
}
