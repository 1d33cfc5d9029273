package worker

import (
	"context"
	"errors"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 邮件通知队列消费服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 注册任务处理器并创建 asynq 服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}, nil
}

// Name 服务名
func (s *Service) Name() string { return "worker" }

// Start 启动消费者并阻塞到 ctx 结束；信号由上层运行器统一处理
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务完成后退出
func (s *Service) Stop(context.Context) error {
	s.server.Shutdown()
	return nil
}
