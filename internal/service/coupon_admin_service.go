package service

import (
	"errors"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo repository.CouponRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code        string
	Type        string
	Value       int64
	MinSubtotal int64
	MaxDiscount *int64
	Active      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	UsageLimit  *int
}

// UpdateCouponInput 更新优惠券输入（字段为空表示不修改）
type UpdateCouponInput struct {
	Type             *string
	Value            *int64
	MinSubtotal      *int64
	MaxDiscount      *int64
	ClearMaxDiscount bool
	Active           *bool
	StartsAt         *time.Time
	ClearStartsAt    bool
	EndsAt           *time.Time
	ClearEndsAt      bool
	UsageLimit       *int
	ClearUsageLimit  bool
	UsedCount        *int
}

// List 优惠券列表（最新在前）
func (s *CouponAdminService) List(page, pageSize int) ([]models.Coupon, int64, error) {
	return s.repo.List(repository.CouponListFilter{Page: page, PageSize: pageSize})
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	coupon := &models.Coupon{
		Code:        NormalizeCouponCode(input.Code),
		Type:        input.Type,
		Value:       input.Value,
		MinSubtotal: input.MinSubtotal,
		MaxDiscount: input.MaxDiscount,
		Active:      active,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		UsageLimit:  input.UsageLimit,
	}
	if err := validateCouponRule(coupon); err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(coupon.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCouponCodeTaken
	}
	if err := s.repo.Create(coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponCodeTaken
		}
		return nil, err
	}
	return coupon, nil
}

// Update 按优惠码更新，只写入本次修改的列
func (s *CouponAdminService) Update(code string, input UpdateCouponInput) (*models.Coupon, error) {
	existing, err := s.repo.GetByCode(NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}

	fields := make(map[string]interface{})
	if input.Type != nil {
		existing.Type = *input.Type
		fields["type"] = existing.Type
	}
	if input.Value != nil {
		existing.Value = *input.Value
		fields["value"] = existing.Value
	}
	if input.MinSubtotal != nil {
		existing.MinSubtotal = *input.MinSubtotal
		fields["min_subtotal"] = existing.MinSubtotal
	}
	if input.ClearMaxDiscount {
		existing.MaxDiscount = nil
		fields["max_discount"] = nil
	} else if input.MaxDiscount != nil {
		existing.MaxDiscount = input.MaxDiscount
		fields["max_discount"] = *input.MaxDiscount
	}
	if input.Active != nil {
		existing.Active = *input.Active
		fields["active"] = existing.Active
	}
	if input.ClearStartsAt {
		existing.StartsAt = nil
		fields["starts_at"] = nil
	} else if input.StartsAt != nil {
		existing.StartsAt = input.StartsAt
		fields["starts_at"] = *input.StartsAt
	}
	if input.ClearEndsAt {
		existing.EndsAt = nil
		fields["ends_at"] = nil
	} else if input.EndsAt != nil {
		existing.EndsAt = input.EndsAt
		fields["ends_at"] = *input.EndsAt
	}
	if input.ClearUsageLimit {
		existing.UsageLimit = nil
		fields["usage_limit"] = nil
	} else if input.UsageLimit != nil {
		existing.UsageLimit = input.UsageLimit
		fields["usage_limit"] = *input.UsageLimit
	}
	if input.UsedCount != nil {
		existing.UsedCount = *input.UsedCount
		fields["used_count"] = existing.UsedCount
	}
	if err := validateCouponRule(existing); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	if _, err := s.repo.UpdateFields(existing.ID, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetByCode(existing.Code)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrCouponNotFound
	}
	return updated, nil
}

// Delete 按优惠码删除
func (s *CouponAdminService) Delete(code string) error {
	affected, err := s.repo.DeleteByCode(NormalizeCouponCode(code))
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func validateCouponRule(coupon *models.Coupon) error {
	if len(coupon.Code) < 2 || len(coupon.Code) > 30 {
		return NewFieldError("code", "length must be between 2 and 30")
	}
	switch coupon.Type {
	case constants.CouponTypePercent:
		if coupon.Value > 100 {
			return NewFieldError("value", "percent must not exceed 100")
		}
	case constants.CouponTypeFixed:
	default:
		return NewFieldError("type", "must be PERCENT or FIXED")
	}
	if coupon.Value < 1 || coupon.Value > 100000 {
		return NewFieldError("value", "must be between 1 and 100000")
	}
	if coupon.MinSubtotal < 0 {
		return NewFieldError("min_subtotal", "must not be negative")
	}
	if coupon.MaxDiscount != nil && *coupon.MaxDiscount < 0 {
		return NewFieldError("max_discount", "must not be negative")
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit < 1 {
		return NewFieldError("usage_limit", "must be at least 1")
	}
	if coupon.UsedCount < 0 {
		return NewFieldError("used_count", "must not be negative")
	}
	if coupon.StartsAt != nil && coupon.EndsAt != nil && coupon.EndsAt.Before(*coupon.StartsAt) {
		return ErrCouponInvalidRule
	}
	return nil
}
