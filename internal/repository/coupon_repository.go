package repository

import (
	"strings"

	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	UpdateFields(id uint, fields map[string]interface{}) (int64, error)
	DeleteByCode(code string) (int64, error)
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	IncrementUsedCount(code string) (int64, error)
	WithTx(tx *gorm.DB) CouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByCode 根据优惠码获取优惠券
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	return firstOrNil[models.Coupon](r.db.Where("code = ?", code))
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// UpdateFields 只写入指定列，used_count 仅在显式传入时修改
func (r *GormCouponRepository) UpdateFields(id uint, fields map[string]interface{}) (int64, error) {
	if id == 0 || len(fields) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Coupon{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

// DeleteByCode 按优惠码删除
func (r *GormCouponRepository) DeleteByCode(code string) (int64, error) {
	result := r.db.Where("code = ?", code).Delete(&models.Coupon{})
	return result.RowsAffected, result.Error
}

// List 获取优惠券列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code = ?", strings.ToUpper(code))
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	return findPage[models.Coupon](query, filter.Page, filter.PageSize, "created_at DESC, id DESC")
}

// IncrementUsedCount 在未达上限时增加使用次数，返回受影响行数（0 表示已用尽）
func (r *GormCouponRepository) IncrementUsedCount(code string) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("code = ?", code).
		Where("(usage_limit IS NULL OR used_count < usage_limit)").
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
