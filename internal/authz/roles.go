package authz

import (
	"fmt"

	"github.com/readrover/internal/constants"
)

// Policy 角色可访问的路由
type Policy struct {
	Object string
	Action string
}

// viewer 为其余角色的公共父角色，不可直接分配
const roleViewer = "viewer"

var roleParents = map[string]string{
	constants.AdminRoleAdmin:          roleViewer,
	constants.AdminRoleCatalogManager: roleViewer,
	constants.AdminRoleSupport:        roleViewer,
}

var rolePolicies = map[string][]Policy{
	roleViewer: {
		{"/admin/me", "GET"},
		{"/admin/password", "POST"},
		{"/admin/analytics", "GET"},
	},
	constants.AdminRoleAdmin: {
		{"/admin/*", "*"},
	},
	constants.AdminRoleCatalogManager: {
		{"/admin/books", "*"},
		{"/admin/books/:id", "*"},
		{"/admin/coupons", "*"},
		{"/admin/coupons/:code", "*"},
		{"/admin/banners", "*"},
		{"/admin/banners/:id", "*"},
	},
	constants.AdminRoleSupport: {
		{"/admin/orders", "GET"},
		{"/admin/orders", "PATCH"},
		{"/admin/messages", "GET"},
		{"/admin/messages", "PATCH"},
		{"/admin/books", "GET"},
	},
}

// BootstrapBuiltinRoles 写入预置角色与继承关系，已存在的规则跳过
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for role, policies := range rolePolicies {
		for _, policy := range policies {
			if _, err := s.enforcer.AddPolicy(roleSubject(role), policy.Object, policy.Action); err != nil {
				return fmt.Errorf("authz seed %s %s %s: %w", role, policy.Action, policy.Object, err)
			}
		}
	}
	for child, parent := range roleParents {
		if _, err := s.enforcer.AddGroupingPolicy(roleSubject(child), roleSubject(parent)); err != nil {
			return fmt.Errorf("authz link %s -> %s: %w", child, parent, err)
		}
	}
	return nil
}

// IsBuiltinRole 是否为可分配给管理员的预置角色
func IsBuiltinRole(role string) bool {
	_, ok := roleParents[role]
	return ok
}
