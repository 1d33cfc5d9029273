package service

import (
	"context"
	"fmt"
	"time"

	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	analyticsCacheTTL    = 45 * time.Second
	analyticsWindowDays  = 14
	analyticsTopBooksMax = 8
)

// AnalyticsService 后台统计服务
type AnalyticsService struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(repo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// AnalyticsCards 统计卡片
type AnalyticsCards struct {
	Users             int64  `json:"users"`
	Books             int64  `json:"books"`
	Orders            int64  `json:"orders"`
	Pending           int64  `json:"pending"`
	Shipped           int64  `json:"shipped"`
	Revenue14         int64  `json:"revenue14"`
	AverageOrderValue string `json:"average_order_value"`
}

// AnalyticsResponse 统计总览
type AnalyticsResponse struct {
	Cards    AnalyticsCards                       `json:"cards"`
	Series   []repository.AnalyticsDailyRow       `json:"series"`
	TopBooks []repository.AnalyticsBookRankingRow `json:"topBooks"`
}

// Overview 获取统计总览（带短时缓存）
func (s *AnalyticsService) Overview(ctx context.Context, forceRefresh bool) (*AnalyticsResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	now := s.now().UTC()
	startAt := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(analyticsWindowDays - 1))
	endAt := startAt.AddDate(0, 0, analyticsWindowDays)

	cacheKey := fmt.Sprintf("analytics:overview:%s", startAt.Format("20060102"))
	if !forceRefresh {
		var cached AnalyticsResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr != nil {
			logger.Warnw("analytics_cache_read_failed", "key", cacheKey, "error", cacheErr)
		}
		if hit {
			return &cached, nil
		}
	}

	var (
		cards AnalyticsCards
		daily []repository.AnalyticsDailyRow
		top   []repository.AnalyticsBookRankingRow
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards.Users, err = s.repo.CountUsers()
		return err
	})
	g.Go(func() (err error) {
		cards.Books, err = s.repo.CountBooks()
		return err
	})
	g.Go(func() (err error) {
		cards.Orders, err = s.repo.CountOrders()
		return err
	})
	g.Go(func() (err error) {
		cards.Pending, err = s.repo.CountOrders(constants.OrderStatusPending, constants.OrderStatusConfirmed)
		return err
	})
	g.Go(func() (err error) {
		cards.Shipped, err = s.repo.CountOrders(constants.OrderStatusShipped, constants.OrderStatusDelivered)
		return err
	})
	g.Go(func() (err error) {
		cards.Revenue14, err = s.repo.SumRevenue(startAt, endAt)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.repo.GetDailyTrends(startAt, endAt)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.GetTopBooks(analyticsTopBooksMax)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	response := &AnalyticsResponse{
		Cards:    cards,
		Series:   fillDailySeries(daily, startAt, endAt),
		TopBooks: top,
	}
	if response.TopBooks == nil {
		response.TopBooks = []repository.AnalyticsBookRankingRow{}
	}
	var windowOrders int64
	for _, row := range response.Series {
		windowOrders += row.Orders
	}
	response.Cards.AverageOrderValue = averageOrderValue(cards.Revenue14, windowOrders)

	if err := cache.SetJSON(ctx, cacheKey, response, analyticsCacheTTL); err != nil {
		logger.Warnw("analytics_cache_write_failed", "key", cacheKey, "error", err)
	}
	return response, nil
}

// fillDailySeries 补齐窗口内无订单的日期
func fillDailySeries(rows []repository.AnalyticsDailyRow, startAt, endAt time.Time) []repository.AnalyticsDailyRow {
	byDay := make(map[string]repository.AnalyticsDailyRow, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row
	}
	series := make([]repository.AnalyticsDailyRow, 0, analyticsWindowDays)
	for cursor := startAt; cursor.Before(endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		if row, ok := byDay[day]; ok {
			series = append(series, row)
			continue
		}
		series = append(series, repository.AnalyticsDailyRow{Day: day})
	}
	return series
}

func averageOrderValue(revenue, orders int64) string {
	if orders <= 0 {
		return "0.00"
	}
	return decimal.NewFromInt(revenue).Div(decimal.NewFromInt(orders)).StringFixed(2)
}
