package models

import "time"

// UserLoginLog 顾客登录记录（成功与失败都会写入）
type UserLoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID     uint      `gorm:"index" json:"user_id"`                          // 顾客 ID（邮箱未注册时为 0）
	Email      string    `gorm:"type:varchar(200);index;not null" json:"email"` // 登录邮箱
	Status     string    `gorm:"type:varchar(16);index;not null" json:"status"` // success / failed
	FailReason string    `gorm:"type:varchar(40)" json:"fail_reason"`           // 失败原因
	ClientIP   string    `gorm:"type:varchar(64);index" json:"client_ip"`       // 客户端 IP
	UserAgent  string    `gorm:"type:varchar(500)" json:"user_agent"`           // 客户端 UA
	RequestID  string    `gorm:"type:varchar(64)" json:"request_id"`            // 请求 ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                       // 登录时间
}

// TableName 指定表名
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}
