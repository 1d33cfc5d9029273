package models

import "time"

// ContactMessage 联系我们留言
type ContactMessage struct {
	ID         uint       `gorm:"primarykey" json:"id"`                          // 主键
	Name       string     `gorm:"not null" json:"name"`                          // 称呼
	Email      string     `gorm:"type:varchar(200);not null" json:"email"`       // 邮箱
	Subject    string     `gorm:"not null" json:"subject"`                       // 主题
	Message    string     `gorm:"type:text;not null" json:"message"`             // 内容
	Status     string     `gorm:"type:varchar(20);not null;index" json:"status"` // 处理状态
	UserID     *uint      `gorm:"index" json:"user_id,omitempty"`                // 登录用户
	ResolvedAt *time.Time `json:"resolved_at"`                                   // 解决时间
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time  `json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (ContactMessage) TableName() string {
	return "contact_messages"
}
