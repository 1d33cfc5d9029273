package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/provider"
	"github.com/readrover/internal/queue"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"github.com/hibiken/asynq"
)

// orderMailer 订单邮件发送能力
type orderMailer interface {
	SendOrderPlacedEmail(toEmail string, order *models.Order) error
	SendOrderStatusEmail(toEmail string, order *models.Order, status string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	orderRepo repository.OrderRepository
	mailer    orderMailer
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{orderRepo: c.OrderRepo}
	if c.EmailService != nil {
		consumer.mailer = c.EmailService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlacedEmail, c.handleOrderPlacedEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderPlacedEmail(_ context.Context, task *asynq.Task) error {
	payload, err := queue.ParseOrderPlacedEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_order_placed_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, receiver, err := c.loadOrderReceiver(payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	if err := c.mailer.SendOrderPlacedEmail(receiver, order); err != nil {
		logger.Warnw("worker_order_placed_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiver,
			"error", err,
		)
		return classifySendError(err)
	}
	logger.Infow("worker_order_placed_email_sent", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	payload, err := queue.ParseOrderStatusEmailPayload(task)
	if err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, receiver, err := c.loadOrderReceiver(payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	if err := c.mailer.SendOrderStatusEmail(receiver, order, status); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiver,
			"status", status,
			"error", err,
		)
		return classifySendError(err)
	}
	return nil
}

// loadOrderReceiver 加载订单与收件邮箱；返回 nil 订单表示跳过
func (c *Consumer) loadOrderReceiver(orderID uint) (*models.Order, string, error) {
	if c == nil || c.orderRepo == nil {
		return nil, "", nil
	}
	if orderID == 0 {
		logger.Debugw("worker_order_email_skip_invalid_payload", "order_id", orderID)
		return nil, "", nil
	}
	if c.mailer == nil {
		logger.Warnw("worker_order_email_skip_mailer_nil", "order_id", orderID)
		return nil, "", nil
	}
	order, err := c.orderRepo.GetByID(orderID)
	if err != nil {
		logger.Warnw("worker_order_email_fetch_order_failed", "order_id", orderID, "error", err)
		return nil, "", err
	}
	if order == nil {
		logger.Debugw("worker_order_email_skip_order_not_found", "order_id", orderID)
		return nil, "", nil
	}
	receiver, err := c.orderRepo.ResolveReceiverEmailByOrderID(orderID)
	if err != nil {
		logger.Warnw("worker_order_email_resolve_receiver_failed", "order_id", orderID, "error", err)
		return nil, "", err
	}
	if receiver == "" {
		logger.Debugw("worker_order_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil, "", nil
	}
	return order, receiver, nil
}

// classifySendError 不可恢复的发送错误不再重试
func classifySendError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured):
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		return err
	}
}
