package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/provider"
	"github.com/readrover/internal/router"
	"github.com/readrover/internal/worker"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 启动参数
type Options struct {
	Config          *config.Config
	Mode            string
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Logger          *zap.SugaredLogger
}

// Run 按模式装配 API 与队列消费者，阻塞到收到信号或任一服务退出
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}

	services, err := buildServices(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	opts.Logger.Infow("app_start", "mode", opts.Mode, "services", len(services))
	return NewRunner(opts.Logger, opts.ShutdownTimeout, services...).Run(ctx)
}

func buildServices(cfg *config.Config, mode string) ([]Service, error) {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container, err := provider.NewContainer(cfg, models.DB)
	if err != nil {
		return nil, err
	}
	var services []Service
	if mode != ModeWorker {
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		services = append(services, NewHTTPService(addr, router.SetupRouter(cfg, container), cfg.Server))
	}
	// all 模式下队列未启用时只跑 API
	if mode == ModeWorker || cfg.Queue.Enabled {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	return services, nil
}
