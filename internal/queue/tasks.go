package queue

import (
	"encoding/json"

	"github.com/readrover/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPlacedEmail 下单确认邮件任务
	TaskOrderPlacedEmail = constants.TaskOrderPlacedEmail
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
)

// OrderPlacedEmailPayload 下单确认邮件任务载荷
type OrderPlacedEmailPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
}

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// NewOrderPlacedEmailTask 创建下单确认邮件任务
func NewOrderPlacedEmailTask(payload OrderPlacedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlacedEmail, body), nil
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// ParseOrderPlacedEmailPayload 解析下单确认邮件载荷
func ParseOrderPlacedEmailPayload(task *asynq.Task) (OrderPlacedEmailPayload, error) {
	var payload OrderPlacedEmailPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseOrderStatusEmailPayload 解析订单状态邮件载荷
func ParseOrderStatusEmailPayload(task *asynq.Task) (OrderStatusEmailPayload, error) {
	var payload OrderStatusEmailPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
