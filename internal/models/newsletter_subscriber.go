package models

import "time"

// NewsletterSubscriber 邮件订阅
type NewsletterSubscriber struct {
	ID        uint      `gorm:"primarykey" json:"id"`                     // 主键
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`        // 邮箱
	Source    string    `gorm:"type:varchar(64)" json:"source,omitempty"` // 来源
	CreatedAt time.Time `gorm:"index" json:"created_at"`                  // 创建时间
}

// TableName 指定表名
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
