package repository

import (
	"fmt"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository 后台统计聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type AnalyticsRepository interface {
	CountUsers() (int64, error)
	CountBooks() (int64, error)
	CountOrders(statuses ...string) (int64, error)
	SumRevenue(startAt, endAt time.Time) (int64, error)
	GetDailyTrends(startAt, endAt time.Time) ([]AnalyticsDailyRow, error)
	GetTopBooks(limit int) ([]AnalyticsBookRankingRow, error)
}

// AnalyticsDailyRow 每日订单与营收
type AnalyticsDailyRow struct {
	Day     string `json:"day"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// AnalyticsBookRankingRow 图书营收排行
type AnalyticsBookRankingRow struct {
	BookID  uint   `json:"book_id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Qty     int64  `json:"qty"`
	Revenue int64  `json:"revenue"`
}

// GormAnalyticsRepository GORM 统计实现
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建统计仓库
func NewAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// CountUsers 顾客总数
func (r *GormAnalyticsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountBooks 图书总数
func (r *GormAnalyticsRepository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&models.Book{}).Count(&count).Error
	return count, err
}

// CountOrders 订单数（可按状态过滤）
func (r *GormAnalyticsRepository) CountOrders(statuses ...string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Order{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}

// SumRevenue 区间内非取消订单的应付总额
func (r *GormAnalyticsRepository) SumRevenue(startAt, endAt time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ? AND status <> ?", startAt, endAt, constants.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

// GetDailyTrends 按天聚合订单数与营收（无订单的日期不返回）
func (r *GormAnalyticsRepository) GetDailyTrends(startAt, endAt time.Time) ([]AnalyticsDailyRow, error) {
	rows := make([]AnalyticsDailyRow, 0)
	dayExpr := "CAST(date(created_at) AS TEXT)"
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf(`%s as day, COUNT(*) as orders,
			COALESCE(SUM(CASE WHEN status <> '%s' THEN total ELSE 0 END), 0) as revenue`,
			dayExpr, constants.OrderStatusCancelled)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopBooks 按营收排序的图书排行（不含已取消订单）
func (r *GormAnalyticsRepository) GetTopBooks(limit int) ([]AnalyticsBookRankingRow, error) {
	if limit <= 0 {
		limit = 8
	}
	rows := make([]AnalyticsBookRankingRow, 0)
	if err := r.db.Model(&models.OrderItem{}).
		Select(`
			order_items.book_id as book_id,
			books.title as title,
			books.slug as slug,
			COALESCE(SUM(order_items.quantity), 0) as qty,
			COALESCE(SUM(order_items.quantity * order_items.unit_price), 0) as revenue
		`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN books ON books.id = order_items.book_id").
		Where("orders.status <> ?", constants.OrderStatusCancelled).
		Group("order_items.book_id, books.title, books.slug").
		Order("revenue DESC, qty DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
