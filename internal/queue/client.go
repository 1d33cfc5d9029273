package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	emailTaskMaxRetry  = 5
	emailTaskTimeout   = 30 * time.Second
	emailTaskRetention = 24 * time.Hour
)

// Client asynq 客户端；未启用时所有投递都是空操作
type Client struct {
	inner *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueOrderPlacedEmail 投递下单确认邮件，同一订单只投递一次
func (c *Client) EnqueueOrderPlacedEmail(ctx context.Context, payload OrderPlacedEmailPayload) error {
	task, err := NewOrderPlacedEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task,
		asynq.Queue(constants.QueueCritical),
		asynq.TaskID("order-placed:"+strconv.FormatUint(uint64(payload.OrderID), 10)),
	)
}

// EnqueueOrderStatusEmail 投递订单状态邮件，同一订单同一状态只投递一次
func (c *Client) EnqueueOrderStatusEmail(ctx context.Context, payload OrderStatusEmailPayload) error {
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task,
		asynq.Queue(constants.QueueDefault),
		asynq.TaskID("order-status:"+strconv.FormatUint(uint64(payload.OrderID), 10)+":"+payload.Status),
	)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	opts = append(opts,
		asynq.MaxRetry(emailTaskMaxRetry),
		asynq.Timeout(emailTaskTimeout),
		asynq.Retention(emailTaskRetention),
	)
	_, err := c.inner.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// BuildServerConfig 消费端配置，critical 队列优先
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			constants.QueueCritical: 6,
			constants.QueueDefault:  3,
		},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
