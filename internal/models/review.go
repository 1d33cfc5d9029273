package models

import "time"

// Review 图书评价
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`              // 主键
	BookID    uint      `gorm:"index;not null" json:"book_id"`     // 图书ID
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`    // 登录用户
	Name      string    `gorm:"not null" json:"name"`              // 评价人
	Rating    int       `gorm:"not null" json:"rating"`            // 评分 1-5
	Comment   string    `gorm:"type:text;not null" json:"comment"` // 评价内容
	CreatedAt time.Time `gorm:"index" json:"created_at"`           // 创建时间
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
