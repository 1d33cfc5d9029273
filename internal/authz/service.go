package authz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// 管理端按 主体 -> 路由模板 -> HTTP 方法 授权，策略持久化在 casbin_rule 表
const policyTable = "casbin_rule"

const (
	adminSubjectPrefix = "admin:"
	roleSubjectPrefix  = "role:"
	routePrefix        = "/api/v1"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// ErrUnavailable 授权服务未初始化
var ErrUnavailable = errors.New("authz: enforcer not initialized")

// Service casbin 授权服务
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 基于数据库创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz: db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", policyTable)
	if err != nil {
		return nil, fmt.Errorf("authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz load policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceAdmin 判断管理员能否以 method 访问 path
func (s *Service) EnforceAdmin(adminID uint, path, method string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(adminSubject(adminID), NormalizeObject(path), strings.ToUpper(strings.TrimSpace(method)))
}

// SetAdminRoles 以 roles 覆盖管理员当前角色
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return errors.New("authz: admin id is required")
	}
	if err := s.ready(); err != nil {
		return err
	}
	subject := adminSubject(adminID)
	if _, err := s.enforcer.RemoveFilteredGroupingPolicy(0, subject); err != nil {
		return fmt.Errorf("authz clear roles of %s: %w", subject, err)
	}
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		if _, err := s.enforcer.AddGroupingPolicy(subject, roleSubject(role)); err != nil {
			return fmt.Errorf("authz bind %s to %s: %w", subject, role, err)
		}
	}
	return nil
}

// GetAdminRoles 管理员直接持有的角色（不含继承）
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	bound, err := s.enforcer.GetRolesForUser(adminSubject(adminID))
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(bound))
	for _, item := range bound {
		if name, ok := strings.CutPrefix(item, roleSubjectPrefix); ok {
			roles = append(roles, name)
		}
	}
	return roles, nil
}

// NormalizeObject 把请求路径或路由模板转成策略里的对象（去掉 /api/v1）
func NormalizeObject(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if rest, ok := strings.CutPrefix(path, routePrefix); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
		path = rest
	}
	if path == "" {
		return "/"
	}
	return path
}

func adminSubject(adminID uint) string {
	return adminSubjectPrefix + strconv.FormatUint(uint64(adminID), 10)
}

func roleSubject(role string) string {
	return roleSubjectPrefix + role
}
