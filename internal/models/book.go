package models

import "time"

// Book 图书表（金额为最小货币单位的整数）
type Book struct {
	ID          uint      `gorm:"primarykey" json:"id"`                            // 主键
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`                // URL 唯一标识
	Title       string    `gorm:"not null;index" json:"title"`                     // 书名
	Author      string    `gorm:"not null;index" json:"author"`                    // 作者
	Publisher   string    `gorm:"type:varchar(200)" json:"publisher,omitempty"`    // 出版社
	Language    string    `gorm:"type:varchar(40);not null" json:"language"`       // 语言
	Category    string    `gorm:"type:varchar(80);not null;index" json:"category"` // 分类
	Tags        string    `gorm:"type:text" json:"tags"`                           // 标签（逗号分隔）
	Description string    `gorm:"type:text" json:"description"`                    // 简介
	Price       int64     `gorm:"not null" json:"price"`                           // 原价
	SalePrice   *int64    `json:"sale_price"`                                      // 促销价（仅小于原价时有效）
	Stock       int       `gorm:"not null;default:0" json:"stock"`                 // 库存
	CoverURL    string    `gorm:"type:varchar(500)" json:"cover_url,omitempty"`    // 封面
	Active      bool      `gorm:"not null;index" json:"active"`                    // 是否上架
	RatingAvg   float64   `gorm:"not null;default:0" json:"rating_avg"`            // 平均评分
	RatingCount int       `gorm:"not null;default:0" json:"rating_count"`          // 评分人数
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                         // 更新时间
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// EffectivePrice 实际售价：促销价存在且低于原价时取促销价
func (b Book) EffectivePrice() int64 {
	if b.SalePrice != nil && *b.SalePrice < b.Price {
		return *b.SalePrice
	}
	return b.Price
}

// NormalizeSalePrice 促销价不低于原价时清空
func NormalizeSalePrice(price int64, salePrice *int64) *int64 {
	if salePrice == nil || *salePrice >= price {
		return nil
	}
	value := *salePrice
	return &value
}
