package models

import "time"

// AdminAuditLog 后台操作审计日志
// 说明：记录订单状态变更、删除与角色调整等不可逆的后台操作。
type AdminAuditLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                           // 主键
	AdminID       uint      `gorm:"index;not null" json:"admin_id"`                                 // 操作人
	AdminUsername string    `gorm:"type:varchar(100);not null;default:''" json:"admin_username"`    // 操作人账号
	Action        string    `gorm:"type:varchar(60);index;not null" json:"action"`                  // 操作类型
	TargetType    string    `gorm:"type:varchar(40);index;not null;default:''" json:"target_type"`  // 目标类型
	TargetID      string    `gorm:"type:varchar(80);index;not null;default:''" json:"target_id"`    // 目标标识
	RequestID     string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`   // 请求 ID
	Detail        JSON      `gorm:"type:text" json:"detail"`                                        // 变更详情
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
