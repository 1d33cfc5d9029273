package constants

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// OrderStatuses 全部订单状态（管理端可任意切换）
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// 优惠券类型常量
const (
	CouponTypePercent = "PERCENT"
	CouponTypeFixed   = "FIXED"
)

// 优惠券校验失败原因
const (
	CouponReasonMissingCode  = "MISSING_CODE"
	CouponReasonNotFound     = "NOT_FOUND"
	CouponReasonInactive     = "INACTIVE"
	CouponReasonNotStarted   = "NOT_STARTED"
	CouponReasonExpired      = "EXPIRED"
	CouponReasonMinSubtotal  = "MIN_SUBTOTAL"
	CouponReasonLimitReached = "LIMIT_REACHED"
)

// 站内消息状态常量
const (
	ContactStatusNew        = "NEW"
	ContactStatusInProgress = "IN_PROGRESS"
	ContactStatusResolved   = "RESOLVED"
)

// 用户角色（写入 JWT）
const (
	UserRoleUser  = "USER"
	UserRoleAdmin = "ADMIN"
)

// 后台管理员角色（对应 casbin 预置角色）
const (
	AdminRoleAdmin          = "admin"
	AdminRoleCatalogManager = "catalog_manager"
	AdminRoleSupport        = "support"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 图书上下架筛选
const (
	BookFilterActive   = "active"
	BookFilterInactive = "inactive"
	BookFilterAll      = "all"
)

// 图书默认语言
const (
	BookLanguageDefault = "Bangla"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneRegister      = "register"
	CaptchaSceneContactSubmit = "contact_submit"
	CaptchaSceneOrderCreate   = "order_create"
)

// 队列常量
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskOrderPlacedEmail = "order:placed_email"
	TaskOrderStatusEmail = "order:status_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "rr"
)

// 订单号默认前缀
const (
	OrderNoPrefixDefault = "RR"
)

// 站点信息
const (
	SiteName         = "ReadRover"
	SiteSupportEmail = "support@readrover.com"
)

// 后台审计操作
const (
	AuditActionOrderStatusUpdate = "order_status_update"
	AuditActionBookDelete        = "book_delete"
	AuditActionCouponDelete      = "coupon_delete"
	AuditActionAdminCreate       = "admin_create"
	AuditActionAdminRoleUpdate   = "admin_role_update"
	AuditActionBannerDelete      = "banner_delete"
)

// Banner 投放位置
const (
	BannerPositionHomeHero = "home_hero"
	BannerPositionPromoBar = "promo_bar"
)

// Banner 配色
const (
	BannerTonePrimary   = "primary"
	BannerToneSecondary = "secondary"
)

// 登录记录
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"

	LoginFailReasonInvalidCredentials = "invalid_credentials"
	LoginFailReasonDisabled           = "disabled"
	LoginFailReasonInternal           = "internal_error"
)
