package service

import (
	"strings"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

const (
	recentOrdersLimit = 25
	adminOrdersLimit  = 50
)

// Track 订单号与手机号精确匹配查询
func (s *OrderService) Track(orderNo, phone string) (*models.Order, error) {
	orderNo = strings.ToUpper(strings.TrimSpace(orderNo))
	phone = strings.TrimSpace(phone)
	if orderNo == "" || phone == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndPhone(orderNo, phone)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByPhone 按手机号查询最近订单，可按姓名过滤
func (s *OrderService) ListByPhone(phone, name string) ([]models.Order, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, NewFieldError("phone", "required")
	}
	return s.orderRepo.ListByPhone(repository.OrderListFilter{
		Phone:    phone,
		Name:     strings.TrimSpace(name),
		PageSize: recentOrdersLimit,
	})
}

// ListByUser 登录用户的最近订单
func (s *OrderService) ListByUser(userID uint) ([]models.Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID:   userID,
		Page:     1,
		PageSize: recentOrdersLimit,
	})
}

// ListForAdmin 管理端订单列表
func (s *OrderService) ListForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !isValidOrderStatus(filter.Status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	filter.PageSize = AdminOrderPageSize(filter.PageSize)
	return s.orderRepo.ListAdmin(filter)
}

// AdminOrderPageSize 管理端订单每页条数，上限 50
func AdminOrderPageSize(pageSize int) int {
	if pageSize <= 0 || pageSize > adminOrdersLimit {
		return adminOrdersLimit
	}
	return pageSize
}
