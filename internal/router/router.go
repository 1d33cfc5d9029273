package router

import (
	"strings"

	"github.com/readrover/internal/cache"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"
	adminhandlers "github.com/readrover/internal/http/handlers/admin"
	publichandlers "github.com/readrover/internal/http/handlers/public"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	security := cfg.Security
	loginRule := newRateLimitRule(redisPrefix+":rate:login", security.LoginRateLimit, "Too many login attempts")
	adminLoginRule := newRateLimitRule(redisPrefix+":rate:admin_login", security.LoginRateLimit, "Too many login attempts")
	orderRule := newRateLimitRule(redisPrefix+":rate:order", security.OrderRateLimit, "Too many orders")
	trackRule := newRateLimitRule(redisPrefix+":rate:track", security.TrackRateLimit, "Too many lookups")

	optionalUser := UserJWTAuthMiddleware(c.UserAuthService, c.UserRepo, false)
	requiredUser := UserJWTAuthMiddleware(c.UserAuthService, c.UserRepo, true)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", publicHandler.Health)

	apiV1 := r.Group("/api/v1")
	{
		// 目录与公开接口
		apiV1.GET("/books", publicHandler.ListBooks)
		apiV1.GET("/books/:slug", publicHandler.GetBook)
		apiV1.GET("/books/:slug/reviews", publicHandler.ListBookReviews)
		apiV1.POST("/books/by-slugs", publicHandler.ListBooksBySlugs)
		apiV1.GET("/banners", publicHandler.ListBanners)
		apiV1.POST("/coupons/validate", publicHandler.ValidateCoupon)
		apiV1.GET("/captcha/config", publicHandler.GetCaptchaConfig)
		apiV1.GET("/captcha/image", publicHandler.GetCaptchaImage)
		apiV1.POST("/newsletter/subscribe", publicHandler.SubscribeNewsletter)

		// 游客或顾客（可选登录）
		guest := apiV1.Group("", optionalUser)
		{
			guest.POST("/orders", RateLimitMiddleware(redisClient, orderRule, KeyByIPAndJSONField("phone")), publicHandler.PlaceOrder)
			guest.GET("/orders/track", RateLimitMiddleware(redisClient, trackRule, KeyByIP), publicHandler.TrackOrder)
			guest.GET("/orders/by-phone", RateLimitMiddleware(redisClient, trackRule, KeyByIPAndQuery("phone")), publicHandler.ListOrdersByPhone)
			guest.POST("/reviews", publicHandler.CreateReview)
			guest.POST("/watchlist", publicHandler.AddWatchlist)
			guest.GET("/watchlist", publicHandler.ListWatchlist)
			guest.POST("/watchlist/remove", publicHandler.RemoveWatchlist)
			guest.POST("/contact", publicHandler.SubmitContact)
		}

		// 顾客认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.GET("/me", optionalUser, publicHandler.Me)
		}

		// 顾客个人中心（需登录）
		me := apiV1.Group("/me", requiredUser)
		{
			me.GET("/orders", publicHandler.ListMyOrders)
			me.GET("/login-history", publicHandler.ListLoginHistory)
			me.GET("/addresses", publicHandler.ListAddresses)
			me.POST("/addresses", publicHandler.CreateAddress)
			me.PATCH("/addresses/:id", publicHandler.UpdateAddress)
			me.DELETE("/addresses/:id", publicHandler.DeleteAddress)
		}

		// 后台
		apiV1.POST("/admin/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
		admin := apiV1.Group("/admin",
			AdminJWTAuthMiddleware(c.AuthService, c.AdminRepo),
			AdminRBACMiddleware(c.AuthzService),
		)
		{
			admin.GET("/me", adminHandler.GetAdminMe)
			admin.POST("/password", adminHandler.UpdateAdminPassword)
			admin.GET("/analytics", adminHandler.GetAnalytics)

			admin.GET("/books", adminHandler.ListBooks)
			admin.POST("/books", adminHandler.CreateBook)
			admin.PATCH("/books/:id", adminHandler.UpdateBook)
			admin.DELETE("/books/:id", adminHandler.DeleteBook)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.PATCH("/orders", adminHandler.UpdateOrderStatus)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PATCH("/coupons/:code", adminHandler.UpdateCoupon)
			admin.DELETE("/coupons/:code", adminHandler.DeleteCoupon)

			admin.GET("/banners", adminHandler.ListBanners)
			admin.POST("/banners", adminHandler.CreateBanner)
			admin.PATCH("/banners/:id", adminHandler.UpdateBanner)
			admin.DELETE("/banners/:id", adminHandler.DeleteBanner)

			admin.GET("/messages", adminHandler.ListMessages)
			admin.PATCH("/messages", adminHandler.UpdateMessageStatus)

			admin.GET("/admins", adminHandler.ListAdmins)
			admin.POST("/admins", adminHandler.CreateAdmin)
			admin.PATCH("/admins/:id/role", adminHandler.UpdateAdminRole)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.GET("/user-login-logs", adminHandler.ListUserLoginLogs)
		}
	}
	return r
}
