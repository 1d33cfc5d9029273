package repository

// BookListFilter 查询图书列表的过滤条件
type BookListFilter struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Status   string // active / inactive / all
	OrderBy  string // created / updated
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
	Phone    string
	Name     string
}

// CouponListFilter 优惠券列表筛选
type CouponListFilter struct {
	Code     string
	Active   *bool
	Page     int
	PageSize int
}

// ContactListFilter 站内消息筛选
type ContactListFilter struct {
	Status string
	Limit  int
}

// AdminAuditListFilter 审计日志筛选
type AdminAuditListFilter struct {
	Page       int
	PageSize   int
	AdminID    uint
	Action     string
	TargetType string
	TargetID   string
}

// BannerListFilter Banner 后台筛选
type BannerListFilter struct {
	Page     int
	PageSize int
	Position string
	Search   string
	IsActive *bool
}

// UserLoginLogListFilter 登录记录筛选
type UserLoginLogListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Email    string
	Status   string
	ClientIP string
}
