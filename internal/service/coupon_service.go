package service

import (
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/repository"
)

// CouponService 优惠券校验服务（只读）
type CouponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		now:        time.Now,
	}
}

// CouponSummary 校验成功时返回的优惠券规则
type CouponSummary struct {
	Type        string `json:"type"`
	Value       int64  `json:"value"`
	MinSubtotal int64  `json:"min_subtotal"`
	MaxDiscount *int64 `json:"max_discount"`
}

// CouponValidationResult 优惠码校验结果
type CouponValidationResult struct {
	OK          bool           `json:"ok"`
	Code        string         `json:"code"`
	Discount    int64          `json:"discount"`
	Reason      string         `json:"reason,omitempty"`
	Coupon      *CouponSummary `json:"coupon,omitempty"`
	MinSubtotal *int64         `json:"min_subtotal,omitempty"`
	StartsAt    *time.Time     `json:"starts_at,omitempty"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
}

// Evaluate 查询并计算优惠券折扣
func (s *CouponService) Evaluate(code string, subtotal int64) (CouponEvaluation, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return CouponEvaluation{Reason: constants.CouponReasonMissingCode}, nil
	}
	coupon, err := s.couponRepo.GetByCode(normalized)
	if err != nil {
		return CouponEvaluation{}, err
	}
	return EvaluateCoupon(coupon, normalized, subtotal, s.now()), nil
}

// Validate 校验优惠码并返回失败原因，不修改任何数据
func (s *CouponService) Validate(code string, subtotal int64) (*CouponValidationResult, error) {
	evaluation, err := s.Evaluate(code, subtotal)
	if err != nil {
		return nil, err
	}
	result := &CouponValidationResult{
		OK:       evaluation.OK,
		Code:     evaluation.Code,
		Discount: evaluation.Discount,
		Reason:   evaluation.Reason,
	}
	coupon := evaluation.Coupon
	if evaluation.OK {
		result.Coupon = &CouponSummary{
			Type:        coupon.Type,
			Value:       coupon.Value,
			MinSubtotal: coupon.MinSubtotal,
			MaxDiscount: coupon.MaxDiscount,
		}
		return result, nil
	}
	switch evaluation.Reason {
	case constants.CouponReasonNotStarted:
		result.StartsAt = coupon.StartsAt
	case constants.CouponReasonExpired:
		result.EndsAt = coupon.EndsAt
	case constants.CouponReasonMinSubtotal:
		minSubtotal := coupon.MinSubtotal
		result.MinSubtotal = &minSubtotal
	}
	return result, nil
}

