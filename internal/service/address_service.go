package service

import (
	"strings"

	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"

	"gorm.io/gorm"
)

// AddressService 用户收货地址
type AddressService struct {
	repo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// AddressInput 新增地址输入
type AddressInput struct {
	Label     string
	Phone     string
	Address   string
	City      string
	IsDefault bool
}

// AddressPatch 地址部分更新
type AddressPatch struct {
	Label     *string
	Phone     *string
	Address   *string
	City      *string
	IsDefault *bool
}

// List 默认地址在前
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(userID)
}

// Create 新增地址，设为默认时同事务清除其他默认
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	address := &models.Address{
		UserID:    userID,
		Label:     strings.TrimSpace(input.Label),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		City:      strings.TrimSpace(input.City),
		IsDefault: input.IsDefault,
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefault(userID, 0); err != nil {
				return err
			}
		}
		return repo.Create(address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update 修改地址（仅限本人）
func (s *AddressService) Update(userID, id uint, patch AddressPatch) (*models.Address, error) {
	existing, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrAddressNotFound
	}
	assignTrimmed(&existing.Label, patch.Label)
	assignTrimmed(&existing.Phone, patch.Phone)
	assignTrimmed(&existing.Address, patch.Address)
	assignTrimmed(&existing.City, patch.City)
	if patch.IsDefault != nil {
		existing.IsDefault = *patch.IsDefault
	}
	if err := validateAddress(existing); err != nil {
		return nil, err
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if existing.IsDefault {
			if err := repo.ClearDefault(userID, existing.ID); err != nil {
				return err
			}
		}
		return repo.Update(existing)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete 删除地址（仅限本人）
func (s *AddressService) Delete(userID, id uint) error {
	affected, err := s.repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func validateAddress(address *models.Address) error {
	fields := map[string]string{}
	if len([]rune(address.Label)) > 40 {
		fields["label"] = "max 40 characters"
	}
	if n := len([]rune(address.Phone)); n < 6 || n > 30 {
		fields["phone"] = "length must be between 6 and 30"
	}
	if n := len([]rune(address.Address)); n < 8 || n > 500 {
		fields["address"] = "length must be between 8 and 500"
	}
	if len([]rune(address.City)) > 60 {
		fields["city"] = "max 60 characters"
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}
