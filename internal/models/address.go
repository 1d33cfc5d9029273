package models

import "time"

// Address 用户收货地址
type Address struct {
	ID        uint      `gorm:"primarykey" json:"id"`                           // 主键
	UserID    uint      `gorm:"index;not null" json:"user_id"`                  // 所属用户
	Label     string    `gorm:"type:varchar(40)" json:"label,omitempty"`        // 标签（家/公司）
	Phone     string    `gorm:"type:varchar(40);not null" json:"phone"`         // 联系电话
	Address   string    `gorm:"type:text;not null" json:"address"`              // 详细地址
	City      string    `gorm:"type:varchar(60)" json:"city,omitempty"`         // 城市
	IsDefault bool      `gorm:"not null;default:false;index" json:"is_default"` // 是否默认
	CreatedAt time.Time `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
