package provider

import (
	"errors"
	"fmt"

	"github.com/readrover/internal/authz"
	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/queue"
	"github.com/readrover/internal/repository"
	"github.com/readrover/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	BookRepo       repository.BookRepository
	OrderRepo      repository.OrderRepository
	CouponRepo     repository.CouponRepository
	AddressRepo    repository.AddressRepository
	WatchlistRepo  repository.WatchlistRepository
	ReviewRepo     repository.ReviewRepository
	ContactRepo    repository.ContactRepository
	NewsletterRepo repository.NewsletterRepository
	AnalyticsRepo  repository.AnalyticsRepository
	AuditRepo      repository.AdminAuditLogRepository
	BannerRepo     repository.BannerRepository
	LoginLogRepo   repository.UserLoginLogRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	AdminAccounts      *service.AdminAccountService
	UserAuthService    *service.UserAuthService
	EmailService       *service.EmailService
	CaptchaService     *service.CaptchaService
	Notifier           service.Notifier
	BookService        *service.BookService
	OrderService       *service.OrderService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	AddressService     *service.AddressService
	WatchlistService   *service.WatchlistService
	ReviewService      *service.ReviewService
	ContactService     *service.ContactService
	NewsletterService  *service.NewsletterService
	AnalyticsService   *service.AnalyticsService
	AuditService       *service.AdminAuditService
	BannerService      *service.BannerService
	LoginLogService    *service.UserLoginLogService
}

// NewContainer 按配置装配仓库与服务；Redis 与队列不可用时降级运行
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if db == nil {
		return nil, errors.New("provider: database is not initialized")
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}
	if cfg.Queue.Enabled {
		client, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			c.QueueClient = client
		}
	}
	c.initRepositories(db)
	if err := c.initServices(db); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BookRepo = repository.NewBookRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.WatchlistRepo = repository.NewWatchlistRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.ContactRepo = repository.NewContactRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
	c.AnalyticsRepo = repository.NewAnalyticsRepository(db)
	c.AuditRepo = repository.NewAdminAuditLogRepository(db)
	c.BannerRepo = repository.NewBannerRepository(db)
	c.LoginLogRepo = repository.NewUserLoginLogRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		return fmt.Errorf("init authz: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("bootstrap roles: %w", err)
	}
	c.AuthzService = authzService
	c.syncAdminRoles()

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AdminAccounts = service.NewAdminAccountService(c.AdminRepo, c.AuthzService, c.Config.Security.PasswordPolicy)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.Notifier = service.NewNotifier(c.OrderRepo, c.QueueClient)
	c.BookService = service.NewBookService(c.BookRepo, c.Config.Catalog.CacheTTL(), c.Config.Catalog.MaxPageSize)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.BookRepo, c.CouponRepo, c.Notifier, service.OrderOptions{
		Rule: service.PricingRule{
			FreeShippingThreshold: c.Config.Order.FreeShippingThreshold,
			DeliveryFee:           c.Config.Order.DeliveryFee,
		},
		OrderNoPrefix:    c.Config.Order.OrderNoPrefix,
		MaxPlaceAttempts: c.Config.Order.MaxPlaceAttempts,
		NotifyTimeout:    c.Config.Order.NotifyTimeout(),
	})
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.WatchlistService = service.NewWatchlistService(c.WatchlistRepo, c.BookRepo)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.BookRepo)
	c.ContactService = service.NewContactService(c.ContactRepo)
	c.NewsletterService = service.NewNewsletterService(c.NewsletterRepo)
	c.AnalyticsService = service.NewAnalyticsService(c.AnalyticsRepo)
	c.AuditService = service.NewAdminAuditService(c.AuditRepo)
	c.BannerService = service.NewBannerService(c.BannerRepo, c.CouponRepo)
	c.LoginLogService = service.NewUserLoginLogService(c.LoginLogRepo, c.UserRepo)
	return nil
}

// syncAdminRoles 将管理员表中的角色同步到 casbin
func (c *Container) syncAdminRoles() {
	admins, err := c.AdminRepo.List()
	if err != nil {
		logger.Warnw("provider_list_admins_failed", "error", err)
		return
	}
	for _, admin := range admins {
		if !authz.IsBuiltinRole(admin.Role) {
			logger.Warnw("provider_admin_role_unknown", "admin_id", admin.ID, "role", admin.Role)
			continue
		}
		if err := c.AuthzService.SetAdminRoles(admin.ID, []string{admin.Role}); err != nil {
			logger.Warnw("provider_sync_admin_role_failed", "admin_id", admin.ID, "error", err)
		}
	}
}
