package models

import "time"

// Order 订单表
type Order struct {
	ID             uint      `gorm:"primarykey" json:"id"`                           // 主键
	OrderNo        string    `gorm:"uniqueIndex;not null" json:"order_no"`           // 订单编号
	Name           string    `gorm:"not null" json:"name"`                           // 收货人
	Phone          string    `gorm:"type:varchar(40);not null;index" json:"phone"`   // 联系电话
	Email          string    `gorm:"type:varchar(200);index" json:"email,omitempty"` // 邮箱
	Address        string    `gorm:"type:text;not null" json:"address"`              // 收货地址
	Note           string    `gorm:"type:text" json:"note,omitempty"`                // 备注
	UserID         *uint     `gorm:"index" json:"user_id,omitempty"`                 // 下单用户（游客为空）
	Status         string    `gorm:"type:varchar(20);index;not null" json:"status"`  // 订单状态
	Subtotal       int64     `gorm:"not null" json:"subtotal"`                       // 商品小计
	CouponCode     *string   `gorm:"type:varchar(40);index" json:"coupon_code"`      // 实际使用的优惠码
	CouponDiscount int64     `gorm:"not null;default:0" json:"coupon_discount"`      // 优惠金额
	DeliveryFee    int64     `gorm:"not null;default:0" json:"delivery_fee"`         // 运费
	Total          int64     `gorm:"not null" json:"total"`                          // 应付金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`                        // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
