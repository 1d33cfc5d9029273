package models

import "time"

// Coupon 优惠券
type Coupon struct {
	ID          uint       `gorm:"primarykey" json:"id"`                   // 主键
	Code        string     `gorm:"uniqueIndex;not null" json:"code"`       // 优惠码（大写）
	Type        string     `gorm:"type:varchar(16);not null" json:"type"`  // 类型（PERCENT/FIXED）
	Value       int64      `gorm:"not null" json:"value"`                  // 百分比或固定金额
	MinSubtotal int64      `gorm:"not null;default:0" json:"min_subtotal"` // 使用门槛
	MaxDiscount *int64     `json:"max_discount"`                           // 最大优惠金额（空表示不限制）
	Active      bool       `gorm:"not null;index" json:"active"`           // 是否启用
	StartsAt    *time.Time `gorm:"index" json:"starts_at"`                 // 生效时间
	EndsAt      *time.Time `gorm:"index" json:"ends_at"`                   // 失效时间
	UsageLimit  *int       `json:"usage_limit"`                            // 总使用上限（空表示不限制）
	UsedCount   int        `gorm:"not null;default:0" json:"used_count"`   // 已使用次数
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`                // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
