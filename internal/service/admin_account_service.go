package service

import (
	"regexp"
	"strings"

	"github.com/readrover/internal/authz"
	"github.com/readrover/internal/config"
	"github.com/readrover/internal/logger"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

var adminUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,40}$`)

// adminRoleBinder 管理员角色绑定（casbin）
type adminRoleBinder interface {
	SetAdminRoles(adminID uint, roles []string) error
}

// AdminAccountService 后台账号管理
type AdminAccountService struct {
	adminRepo repository.AdminRepository
	roles     adminRoleBinder
	policy    config.PasswordPolicyConfig
}

// NewAdminAccountService 创建后台账号服务
func NewAdminAccountService(adminRepo repository.AdminRepository, roles adminRoleBinder, policy config.PasswordPolicyConfig) *AdminAccountService {
	return &AdminAccountService{adminRepo: adminRepo, roles: roles, policy: policy}
}

// CreateAdminInput 创建管理员输入
type CreateAdminInput struct {
	Username string
	Password string
	Role     string
}

// List 管理员列表
func (s *AdminAccountService) List() ([]models.Admin, error) {
	return s.adminRepo.List()
}

// Create 创建管理员并绑定角色
func (s *AdminAccountService) Create(input CreateAdminInput) (*models.Admin, error) {
	username := strings.TrimSpace(input.Username)
	if !adminUsernamePattern.MatchString(username) {
		return nil, NewFieldError("username", "3-40 letters, digits, dot, dash or underscore")
	}
	role, err := normalizeAdminRole(input.Role)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.policy, input.Password); err != nil {
		return nil, err
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAdminUsernameTaken
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{Username: username, PasswordHash: hash, Role: role}
	if err := s.adminRepo.Create(admin); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAdminUsernameTaken
		}
		return nil, err
	}
	if err := s.bindRole(admin); err != nil {
		return nil, err
	}
	logger.Infow("admin_account_created", "admin_id", admin.ID, "username", admin.Username, "role", admin.Role)
	return admin, nil
}

// UpdateRole 修改管理员角色
func (s *AdminAccountService) UpdateRole(adminID uint, role string) (*models.Admin, error) {
	normalized, err := normalizeAdminRole(role)
	if err != nil {
		return nil, err
	}
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	admin.Role = normalized
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}
	if err := s.bindRole(admin); err != nil {
		return nil, err
	}
	logger.Infow("admin_account_role_updated", "admin_id", admin.ID, "role", admin.Role)
	return admin, nil
}

func (s *AdminAccountService) bindRole(admin *models.Admin) error {
	if s.roles == nil {
		return nil
	}
	return s.roles.SetAdminRoles(admin.ID, []string{admin.Role})
}

func normalizeAdminRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !authz.IsBuiltinRole(role) {
		return "", ErrInvalidAdminRole
	}
	return role, nil
}
