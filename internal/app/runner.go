package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/readrover/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 可启停的后台服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行运行多个服务，任一退出即整体关闭
type Runner struct {
	services        []Service
	log             *zap.SugaredLogger
	shutdownTimeout time.Duration
}

// NewRunner 创建运行器
func NewRunner(log *zap.SugaredLogger, shutdownTimeout time.Duration, services ...Service) *Runner {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{services: services, log: log, shutdownTimeout: shutdownTimeout}
}

// Run 阻塞直到 ctx 结束或某个服务返回；ctx 取消视为正常退出
func (r *Runner) Run(ctx context.Context) error {
	if len(r.services) == 0 {
		return errors.New("no services to run")
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		svc := svc
		g.Go(func() error {
			r.log.Infow("service_start", "service", svc.Name())
			err := svc.Start(gctx)
			r.log.Infow("service_exit", "service", svc.Name(), "error", err)
			if err == nil {
				// 正常返回也要带动其它服务退出
				return errServiceExited
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		r.stopAll()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errServiceExited) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var errServiceExited = errors.New("service exited")

func (r *Runner) stopAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()
	for _, svc := range r.services {
		if err := svc.Stop(ctx); err != nil {
			r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}

// HTTPService gin 引擎的 HTTP 服务
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler, cfg config.ServerConfig) *HTTPService {
	return &HTTPService{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       2 * cfg.ReadTimeout(),
	}}
}

// Name 服务名
func (s *HTTPService) Name() string { return "http" }

// Start 监听端口，Shutdown 触发的关闭不视为错误
func (s *HTTPService) Start(context.Context) error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *HTTPService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
