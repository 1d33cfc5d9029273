package repository

import (
	"time"

	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// BannerRepository Banner 数据访问接口
type BannerRepository interface {
	List(filter BannerListFilter) ([]models.Banner, int64, error)
	ListValidByPosition(position string, limit int, now time.Time) ([]models.Banner, error)
	GetByID(id uint) (*models.Banner, error)
	Create(banner *models.Banner) error
	Update(banner *models.Banner) error
	Delete(id uint) error
}

// GormBannerRepository GORM 实现
type GormBannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository 创建 Banner 仓库
func NewBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

// List 后台列表
func (r *GormBannerRepository) List(filter BannerListFilter) ([]models.Banner, int64, error) {
	query := whereEq(r.db.Model(&models.Banner{}), "position", filter.Position)
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	query = applyKeywordSearch(query, filter.Search, "name", "title", "coupon_code")
	return findPage[models.Banner](query, filter.Page, filter.PageSize, "sort_order DESC, created_at DESC")
}

// ListValidByPosition 获取指定位置当前生效的 Banner
func (r *GormBannerRepository) ListValidByPosition(position string, limit int, now time.Time) ([]models.Banner, error) {
	var banners []models.Banner
	query := r.db.Model(&models.Banner{}).
		Where("is_active = ?", true).
		Where("(start_at IS NULL OR start_at <= ?)", now).
		Where("(end_at IS NULL OR end_at >= ?)", now)

	if position != "" {
		query = query.Where("position = ?", position)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("sort_order DESC, created_at DESC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// GetByID 根据 ID 获取 Banner
func (r *GormBannerRepository) GetByID(id uint) (*models.Banner, error) {
	return firstOrNil[models.Banner](r.db, id)
}

// Create 创建 Banner
func (r *GormBannerRepository) Create(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

// Update 更新 Banner
func (r *GormBannerRepository) Update(banner *models.Banner) error {
	return r.db.Save(banner).Error
}

// Delete 删除 Banner
func (r *GormBannerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Banner{}, id).Error
}
