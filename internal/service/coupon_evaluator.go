package service

import (
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"
)

// CouponEvaluation 优惠券计算结果
type CouponEvaluation struct {
	OK       bool
	Code     string
	Discount int64
	Reason   string
	Coupon   *models.Coupon
}

// AppliedCode 实际写入订单的优惠码，无折扣时为空
func (e CouponEvaluation) AppliedCode() *string {
	if !e.OK || e.Discount <= 0 || e.Code == "" {
		return nil
	}
	code := e.Code
	return &code
}

// NormalizeCouponCode 去空格并转大写
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluateCoupon 根据优惠券规则计算折扣，不访问存储
func EvaluateCoupon(coupon *models.Coupon, code string, subtotal int64, now time.Time) CouponEvaluation {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return CouponEvaluation{Reason: constants.CouponReasonMissingCode}
	}
	result := CouponEvaluation{Code: normalized, Coupon: coupon}
	if coupon == nil {
		result.Reason = constants.CouponReasonNotFound
		return result
	}
	if !coupon.Active {
		result.Reason = constants.CouponReasonInactive
		return result
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		result.Reason = constants.CouponReasonNotStarted
		return result
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		result.Reason = constants.CouponReasonExpired
		return result
	}
	if subtotal < coupon.MinSubtotal {
		result.Reason = constants.CouponReasonMinSubtotal
		return result
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		result.Reason = constants.CouponReasonLimitReached
		return result
	}

	result.OK = true
	result.Discount = couponDiscount(coupon, subtotal)
	return result
}

func couponDiscount(coupon *models.Coupon, subtotal int64) int64 {
	var raw int64
	switch coupon.Type {
	case constants.CouponTypePercent:
		raw = models.PercentOf(subtotal, coupon.Value)
	case constants.CouponTypeFixed:
		raw = coupon.Value
	}
	if coupon.MaxDiscount != nil && raw > *coupon.MaxDiscount {
		raw = *coupon.MaxDiscount
	}
	return models.ClampAmount(raw, 0, maxInt64(subtotal, 0))
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
