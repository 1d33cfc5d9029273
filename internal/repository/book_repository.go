package repository

import (
	"errors"
	"strings"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// ErrBookReferenced 图书仍被订单项或评价引用
var ErrBookReferenced = errors.New("book is referenced")

// BookRepository 图书数据访问接口
type BookRepository interface {
	List(filter BookListFilter) ([]models.Book, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Book, error)
	GetByID(id uint) (*models.Book, error)
	ListActiveByIDs(ids []uint) ([]models.Book, error)
	ListActiveBySlugs(slugs []string) ([]models.Book, error)
	Create(book *models.Book) error
	UpdateFields(id uint, fields map[string]interface{}) (int64, error)
	Delete(id uint) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	CountReferences(id uint) (int64, error)
	DecrementStock(bookID uint, quantity int) (int64, error)
	UpdateRating(bookID uint, avg float64, count int) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) BookRepository
}

// GormBookRepository GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓库
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookRepository) WithTx(tx *gorm.DB) BookRepository {
	if tx == nil {
		return r
	}
	return &GormBookRepository{db: tx}
}

// Transaction 执行事务
func (r *GormBookRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 图书列表
func (r *GormBookRepository) List(filter BookListFilter) ([]models.Book, int64, error) {
	query := r.db.Model(&models.Book{})

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case constants.BookFilterInactive:
		query = query.Where("active = ?", false)
	case constants.BookFilterAll:
	default:
		query = query.Where("active = ?", true)
	}
	query = whereEq(query, "category", strings.TrimSpace(filter.Category))
	query = applyKeywordSearch(query, filter.Search, "title", "author", "tags", "slug", "category")

	orderBy := "created_at DESC, id DESC"
	if filter.OrderBy == "updated" {
		orderBy = "updated_at DESC, id DESC"
	}
	return findPage[models.Book](query, filter.Page, filter.PageSize, orderBy)
}

// GetBySlug 根据 slug 获取图书
func (r *GormBookRepository) GetBySlug(slug string, onlyActive bool) (*models.Book, error) {
	query := r.db.Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	return firstOrNil[models.Book](query)
}

// GetByID 根据 ID 获取图书
func (r *GormBookRepository) GetByID(id uint) (*models.Book, error) {
	return firstOrNil[models.Book](r.db, id)
}

// ListActiveByIDs 批量获取上架图书
func (r *GormBookRepository) ListActiveByIDs(ids []uint) ([]models.Book, error) {
	if len(ids) == 0 {
		return []models.Book{}, nil
	}
	var books []models.Book
	if err := r.db.Where("id IN ? AND active = ?", ids, true).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// ListActiveBySlugs 按 slug 批量获取上架图书（顺序不保证）
func (r *GormBookRepository) ListActiveBySlugs(slugs []string) ([]models.Book, error) {
	if len(slugs) == 0 {
		return []models.Book{}, nil
	}
	var books []models.Book
	if err := r.db.Where("slug IN ? AND active = ?", slugs, true).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Create 创建图书
func (r *GormBookRepository) Create(book *models.Book) error {
	return r.db.Create(book).Error
}

// UpdateFields 只写入指定列，库存与评分等计数列不随整行回写
func (r *GormBookRepository) UpdateFields(id uint, fields map[string]interface{}) (int64, error) {
	if id == 0 || len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Book{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// Delete 删除未被引用的图书，引用检查与删除在同一事务内
func (r *GormBookRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		refs, err := (&GormBookRepository{db: tx}).CountReferences(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrBookReferenced
		}
		// 收藏不阻止删除，随图书一起清理
		if err := tx.Where("book_id = ?", id).Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Book{}, id).Error
	})
}

// CountBySlug 统计 slug 数量
func (r *GormBookRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Book{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountReferences 统计引用该图书的订单项与评价数量
func (r *GormBookRepository) CountReferences(id uint) (int64, error) {
	var items int64
	if err := r.db.Model(&models.OrderItem{}).Where("book_id = ?", id).Count(&items).Error; err != nil {
		return 0, err
	}
	var reviews int64
	if err := r.db.Model(&models.Review{}).Where("book_id = ?", id).Count(&reviews).Error; err != nil {
		return 0, err
	}
	return items + reviews, nil
}

// DecrementStock 条件扣减库存，返回受影响行数（0 表示库存不足或已下架）
func (r *GormBookRepository) DecrementStock(bookID uint, quantity int) (int64, error) {
	if bookID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.Book{}).
		Where("id = ? AND active = ? AND stock >= ?", bookID, true, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateRating 写入评分聚合
func (r *GormBookRepository) UpdateRating(bookID uint, avg float64, count int) error {
	return r.db.Model(&models.Book{}).
		Where("id = ?", bookID).
		UpdateColumns(map[string]interface{}{
			"rating_avg":   avg,
			"rating_count": count,
		}).Error
}
