package repository

import (

	"github.com/readrover/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	ListByUser(userID uint) ([]models.Address, error)
	GetByIDAndUser(id, userID uint) (*models.Address, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id, userID uint) (int64, error)
	ClearDefault(userID uint, exceptID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAddressRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// ListByUser 默认地址优先，其次按创建时间倒序
func (r *GormAddressRepository) ListByUser(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc, id desc").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByIDAndUser 获取用户自己的地址
func (r *GormAddressRepository) GetByIDAndUser(id, userID uint) (*models.Address, error) {
	return firstOrNil[models.Address](r.db.Where("id = ? AND user_id = ?", id, userID))
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// Update 更新地址
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// Delete 删除用户自己的地址
func (r *GormAddressRepository) Delete(id, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	return result.RowsAffected, result.Error
}

// ClearDefault 清除用户其余默认地址
func (r *GormAddressRepository) ClearDefault(userID uint, exceptID uint) error {
	query := r.db.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.UpdateColumn("is_default", false).Error
}
