package models

import "time"

// OrderItem 订单项表（单价为下单时快照）
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`           // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"` // 订单ID
	BookID    uint      `gorm:"index;not null" json:"book_id"`  // 图书ID
	Quantity  int       `gorm:"not null" json:"quantity"`       // 数量
	UnitPrice int64     `gorm:"not null" json:"unit_price"`     // 单价快照
	CreatedAt time.Time `gorm:"index" json:"created_at"`        // 创建时间

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // 关联图书
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
