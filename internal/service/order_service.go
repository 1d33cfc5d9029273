package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/readrover/internal/constants"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultMaxPlaceAttempts = 3
	defaultNotifyTimeout    = 10 * time.Second
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	bookRepo      repository.BookRepository
	couponRepo    repository.CouponRepository
	resolver      *PricingResolver
	couponService *CouponService
	notifier      Notifier
	options       OrderOptions
	now           func() time.Time
	newOrderNo    func(prefix string, now time.Time) (string, error)
}

// OrderOptions 下单规则配置
type OrderOptions struct {
	Rule             PricingRule
	OrderNoPrefix    string
	MaxPlaceAttempts int
	NotifyTimeout    time.Duration
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, bookRepo repository.BookRepository, couponRepo repository.CouponRepository, notifier Notifier, options OrderOptions) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if options.MaxPlaceAttempts <= 0 {
		options.MaxPlaceAttempts = defaultMaxPlaceAttempts
	}
	if options.NotifyTimeout <= 0 {
		options.NotifyTimeout = defaultNotifyTimeout
	}
	if strings.TrimSpace(options.OrderNoPrefix) == "" {
		options.OrderNoPrefix = constants.OrderNoPrefixDefault
	}
	return &OrderService{
		orderRepo:     orderRepo,
		bookRepo:      bookRepo,
		couponRepo:    couponRepo,
		resolver:      NewPricingResolver(bookRepo),
		couponService: NewCouponService(couponRepo),
		notifier:      notifier,
		options:       options,
		now:           time.Now,
		newOrderNo:    GenerateOrderNo,
	}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	Note       string
	CouponCode string
	UserID     *uint
	Items      []CartLine
}

// PlaceOrderResult 下单结果
type PlaceOrderResult struct {
	OrderID        uint    `json:"order_id"`
	OrderNo        string  `json:"order_no"`
	Subtotal       int64   `json:"subtotal"`
	CouponCode     *string `json:"coupon_code"`
	CouponDiscount int64   `json:"coupon_discount"`
	DeliveryFee    int64   `json:"delivery_fee"`
	Total          int64   `json:"total"`
}

// Place 下单：解析价格、计算优惠、事务内扣库存与核销优惠券
func (s *OrderService) Place(input PlaceOrderInput) (*PlaceOrderResult, error) {
	for attempt := 1; attempt <= s.options.MaxPlaceAttempts; attempt++ {
		order, err := s.placeOnce(input)
		if err == nil {
			s.notifyPlaced(order)
			return &PlaceOrderResult{
				OrderID:        order.ID,
				OrderNo:        order.OrderNo,
				Subtotal:       order.Subtotal,
				CouponCode:     order.CouponCode,
				CouponDiscount: order.CouponDiscount,
				DeliveryFee:    order.DeliveryFee,
				Total:          order.Total,
			}, nil
		}
		if errors.Is(err, errOrderNoConflict) || errors.Is(err, errCouponExhausted) {
			logger.Warnw("order_place_retry", "attempt", attempt, "reason", err.Error())
			continue
		}
		return nil, err
	}
	return nil, ErrPlaceOrderRetry
}

func (s *OrderService) placeOnce(input PlaceOrderInput) (*models.Order, error) {
	lines, err := s.resolver.Resolve(input.Items)
	if err != nil {
		return nil, err
	}
	var subtotal int64
	for _, line := range lines {
		subtotal += line.LineTotal()
	}

	evaluation := CouponEvaluation{}
	if NormalizeCouponCode(input.CouponCode) != "" {
		evaluation, err = s.couponService.Evaluate(input.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	orderNo, err := s.newOrderNo(s.options.OrderNoPrefix, now)
	if err != nil {
		return nil, err
	}
	draft := AssembleOrder(CustomerInfo{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
		Note:    input.Note,
		UserID:  input.UserID,
	}, lines, evaluation, s.options.Rule, orderNo, now)

	if err := s.commit(draft); err != nil {
		return nil, err
	}
	return draft.Order, nil
}

// commit 单事务写入订单、扣减库存、核销优惠券，任一步失败整体回滚
func (s *OrderService) commit(draft *OrderDraft) error {
	return s.bookRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		bookRepo := s.bookRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)

		if err := orderRepo.Create(draft.Order, draft.Items); err != nil {
			if isUniqueViolation(err) {
				return errOrderNoConflict
			}
			return err
		}
		for _, line := range draft.Lines {
			affected, err := bookRepo.DecrementStock(line.Book.ID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &OutOfStockError{BookID: line.Book.ID, Title: line.Book.Title}
			}
		}
		if draft.Order.CouponCode != nil {
			affected, err := couponRepo.IncrementUsedCount(*draft.Order.CouponCode)
			if err != nil {
				return err
			}
			if affected == 0 {
				return errCouponExhausted
			}
		}
		return nil
	})
}

// UpdateStatus 管理端修改订单状态（任意状态间可切换）
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !isValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	affected, err := s.orderRepo.UpdateStatus(orderID, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	logger.Infow("order_status_updated", "order_id", order.ID, "order_no", order.OrderNo, "status", status)
	dispatchNotification(s.options.NotifyTimeout, "order_status_changed", order.ID, func(ctx context.Context) error {
		return s.notifier.OrderStatusChanged(ctx, order, status)
	})
	return order, nil
}

func (s *OrderService) notifyPlaced(order *models.Order) {
	logger.Infow("order_placed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total", order.Total,
		"coupon_code", order.CouponCode,
	)
	snapshot := *order
	dispatchNotification(s.options.NotifyTimeout, "order_placed", order.ID, func(ctx context.Context) error {
		return s.notifier.OrderPlaced(ctx, &snapshot)
	})
}

func isValidOrderStatus(status string) bool {
	for _, item := range constants.OrderStatuses {
		if item == status {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
