package models

import "time"

// WatchlistItem 到货提醒/收藏
type WatchlistItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                         // 主键
	Email     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_watchlist_email_book" json:"email"` // 邮箱
	BookID    uint      `gorm:"not null;uniqueIndex:idx_watchlist_email_book" json:"book_id"`                 // 图书ID
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`                                               // 登录用户
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                      // 创建时间

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"` // 关联图书
}

// TableName 指定表名
func (WatchlistItem) TableName() string {
	return "watchlist_items"
}
