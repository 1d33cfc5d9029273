package repository

import (
	"strings"

	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNoAndPhone(orderNo, phone string) (*models.Order, error)
	ResolveReceiverEmailByOrderID(orderID uint) (string, error)
	ListByPhone(filter OrderListFilter) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string) (int64, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func withItemBooks(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Items.Book", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "slug", "title", "cover_url")
		})
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Omit("Book").Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return firstOrNil[models.Order](withItemBooks(r.db), id)
}

// GetByOrderNoAndPhone 订单号与手机号精确匹配
func (r *GormOrderRepository) GetByOrderNoAndPhone(orderNo, phone string) (*models.Order, error) {
	return firstOrNil[models.Order](withItemBooks(r.db).Where("order_no = ? AND phone = ?", orderNo, phone))
}

// ResolveReceiverEmailByOrderID 解析订单通知收件邮箱（订单邮箱优先，其次下单用户邮箱）
func (r *GormOrderRepository) ResolveReceiverEmailByOrderID(orderID uint) (string, error) {
	if orderID == 0 {
		return "", nil
	}
	var emails []string
	err := r.db.Model(&models.Order{}).
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Where("orders.id = ?", orderID).
		Limit(1).
		Pluck("COALESCE(NULLIF(TRIM(orders.email), ''), users.email, '')", &emails).Error
	if err != nil || len(emails) == 0 {
		return "", err
	}
	return strings.TrimSpace(emails[0]), nil
}

// ListByPhone 按手机号精确匹配并按姓名模糊过滤
func (r *GormOrderRepository) ListByPhone(filter OrderListFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{}).Where("phone = ?", filter.Phone)
	query = applyKeywordSearch(query, filter.Name, "name")

	var orders []models.Order
	if err := withItemBooks(query.Scopes(paginate(1, filter.PageSize))).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if err := withItemBooks(query.Scopes(paginate(filter.Page, filter.PageSize))).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Phone != "" {
		query = query.Where("phone = ?", filter.Phone)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := withItemBooks(query.Scopes(paginate(filter.Page, filter.PageSize))).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态，返回受影响行数
func (r *GormOrderRepository) UpdateStatus(id uint, status string) (int64, error) {
	result := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	return result.RowsAffected, result.Error
}
