package models

import (
	"time"

	"gorm.io/gorm"
)

// Banner 首页轮播与促销条
type Banner struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Name       string         `gorm:"type:varchar(120);not null;index" json:"name"`            // 后台名称
	Position   string         `gorm:"type:varchar(40);not null;index" json:"position"`         // 投放位置
	Title      string         `gorm:"type:varchar(160);not null" json:"title"`                 // 标题
	Subtitle   string         `gorm:"type:varchar(500)" json:"subtitle"`                       // 副标题
	CouponCode string         `gorm:"type:varchar(40)" json:"coupon_code"`                     // 关联优惠码
	LinkURL    string         `gorm:"type:varchar(500)" json:"link_url"`                       // 跳转地址
	LinkLabel  string         `gorm:"type:varchar(60)" json:"link_label"`                      // 按钮文案
	Tone       string         `gorm:"type:varchar(20);not null;default:'primary'" json:"tone"` // 配色
	Pills      string         `gorm:"type:varchar(500)" json:"pills"`                          // 标签（逗号分隔）
	IsActive   bool           `gorm:"not null;index" json:"is_active"`                         // 是否启用
	StartAt    *time.Time     `gorm:"index" json:"start_at"`                                   // 生效时间
	EndAt      *time.Time     `gorm:"index" json:"end_at"`                                     // 失效时间
	SortOrder  int            `gorm:"default:0;index" json:"sort_order"`                       // 排序
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除
}

// TableName 指定表名
func (Banner) TableName() string {
	return "banners"
}
