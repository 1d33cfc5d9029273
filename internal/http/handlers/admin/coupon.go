package admin

import (
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"
	"github.com/readrover/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCouponRequest 创建优惠券
type CreateCouponRequest struct {
	Code        string     `json:"code" binding:"required,min=2,max=30"`
	Type        string     `json:"type" binding:"required,oneof=PERCENT FIXED"`
	Value       int64      `json:"value" binding:"required,min=1"`
	MinSubtotal int64      `json:"min_subtotal" binding:"min=0"`
	MaxDiscount *int64     `json:"max_discount" binding:"omitempty,min=0"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	UsageLimit  *int       `json:"usage_limit" binding:"omitempty,min=1"`
}

// UpdateCouponRequest 更新优惠券（clear_* 清空可选字段）
type UpdateCouponRequest struct {
	Type             *string    `json:"type" binding:"omitempty,oneof=PERCENT FIXED"`
	Value            *int64     `json:"value" binding:"omitempty,min=1"`
	MinSubtotal      *int64     `json:"min_subtotal" binding:"omitempty,min=0"`
	MaxDiscount      *int64     `json:"max_discount" binding:"omitempty,min=0"`
	ClearMaxDiscount bool       `json:"clear_max_discount"`
	Active           *bool      `json:"active"`
	StartsAt         *time.Time `json:"starts_at"`
	ClearStartsAt    bool       `json:"clear_starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	ClearEndsAt      bool       `json:"clear_ends_at"`
	UsageLimit       *int       `json:"usage_limit" binding:"omitempty,min=1"`
	ClearUsageLimit  bool       `json:"clear_usage_limit"`
	UsedCount        *int       `json:"used_count" binding:"omitempty,min=0"`
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	coupons, total, err := h.CouponAdminService.List(page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, coupons, shared.BuildPagination(page, pageSize, total))
}

// CreateCoupon 创建优惠券（优惠码重复返回 409）
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		MinSubtotal: req.MinSubtotal,
		MaxDiscount: req.MaxDiscount,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		UsageLimit:  req.UsageLimit,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, coupon)
}

// UpdateCoupon 按优惠码更新
func (h *Handler) UpdateCoupon(c *gin.Context) {
	var req UpdateCouponRequest
	if !shared.BindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponAdminService.Update(c.Param("code"), service.UpdateCouponInput{
		Type:             req.Type,
		Value:            req.Value,
		MinSubtotal:      req.MinSubtotal,
		MaxDiscount:      req.MaxDiscount,
		ClearMaxDiscount: req.ClearMaxDiscount,
		Active:           req.Active,
		StartsAt:         req.StartsAt,
		ClearStartsAt:    req.ClearStartsAt,
		EndsAt:           req.EndsAt,
		ClearEndsAt:      req.ClearEndsAt,
		UsageLimit:       req.UsageLimit,
		ClearUsageLimit:  req.ClearUsageLimit,
		UsedCount:        req.UsedCount,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 按优惠码删除
func (h *Handler) DeleteCoupon(c *gin.Context) {
	code := c.Param("code")
	if err := h.CouponAdminService.Delete(code); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	h.recordAudit(c, constants.AuditActionCouponDelete, "coupon", strings.ToUpper(code), nil)
	response.Success(c, gin.H{"deleted": true})
}
