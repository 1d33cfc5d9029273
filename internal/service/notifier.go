package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/queue"
	"github.com/readrover/internal/repository"
)

// Notifier 订单通知接口（下单确认与状态变更）
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, status string) error
}

// NopNotifier 未配置队列或邮件时的空实现
type NopNotifier struct{}

// OrderPlaced 不做任何处理
func (NopNotifier) OrderPlaced(context.Context, *models.Order) error { return nil }

// OrderStatusChanged 不做任何处理
func (NopNotifier) OrderStatusChanged(context.Context, *models.Order, string) error { return nil }

// QueueNotifier 通过 asynq 队列投递邮件任务
type QueueNotifier struct {
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
}

// NewQueueNotifier 创建队列通知器
func NewQueueNotifier(orderRepo repository.OrderRepository, queueClient *queue.Client) *QueueNotifier {
	return &QueueNotifier{orderRepo: orderRepo, queueClient: queueClient}
}

// NewNotifier 队列可用时返回队列通知器，否则返回空实现
func NewNotifier(orderRepo repository.OrderRepository, queueClient *queue.Client) Notifier {
	if queueClient == nil || !queueClient.Enabled() {
		return NopNotifier{}
	}
	return NewQueueNotifier(orderRepo, queueClient)
}

// OrderPlaced 投递下单确认邮件
func (n *QueueNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	if order == nil || order.ID == 0 {
		return nil
	}
	if !n.hasReceiver(order.ID) {
		return nil
	}
	return n.queueClient.EnqueueOrderPlacedEmail(ctx, queue.OrderPlacedEmailPayload{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
	})
}

// OrderStatusChanged 投递订单状态邮件
func (n *QueueNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, status string) error {
	if order == nil || order.ID == 0 {
		return nil
	}
	if !n.hasReceiver(order.ID) {
		return nil
	}
	return n.queueClient.EnqueueOrderStatusEmail(ctx, queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  strings.TrimSpace(status),
	})
}

// hasReceiver 订单与下单用户均无邮箱时跳过；查询失败时仍然投递，由消费端兜底
func (n *QueueNotifier) hasReceiver(orderID uint) bool {
	if n.orderRepo == nil {
		return true
	}
	receiver, err := n.orderRepo.ResolveReceiverEmailByOrderID(orderID)
	if err != nil {
		return true
	}
	return strings.TrimSpace(receiver) != ""
}

// dispatchNotification 在独立 goroutine 中执行通知，带超时且吞掉错误与 panic
func dispatchNotification(timeout time.Duration, event string, orderID uint, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("order_notify_failed", "event", event, "order_id", orderID, "error", fmt.Sprint(r))
			}
		}()
		if err := fn(ctx); err != nil {
			logger.Warnw("order_notify_failed", "event", event, "order_id", orderID, "error", err)
		}
	}()
}
