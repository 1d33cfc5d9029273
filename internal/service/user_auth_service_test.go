package service

import (
	"errors"
	"testing"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/models"
	"github.com/readrover/internal/repository"
)

func newTestAuthConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
}

func TestUserAuthRegisterAndLogin(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserAuthService(newTestAuthConfig(), repository.NewUserRepository(db))

	user, token, _, err := svc.Register("Nusrat Jahan", " Nusrat@Example.com ", "bookworm42")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "nusrat@example.com" || token == "" {
		t.Fatalf("unexpected register result: %+v", user)
	}
	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != "USER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, _, err := svc.Register("Other", "nusrat@example.com", "bookworm42"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	if _, _, _, err := svc.Register("Other", "other@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if _, _, _, err := svc.Register("Other", "not-an-email", "bookworm42"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	logged, _, _, err := svc.Login("NUSRAT@example.com", "bookworm42")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID || logged.LastLoginAt == nil {
		t.Fatalf("unexpected login user: %+v", logged)
	}
	if _, _, _, err := svc.Login("nusrat@example.com", "wrong-pass"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", "disabled").Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("nusrat@example.com", "bookworm42"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestUserJWTRejectsAdminToken(t *testing.T) {
	db := setupServiceTestDB(t)
	cfg := newTestAuthConfig()
	userSvc := NewUserAuthService(cfg, repository.NewUserRepository(db))
	adminSvc := NewAuthService(cfg, repository.NewAdminRepository(db))

	token, _, err := adminSvc.IssueToken(&models.Admin{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("generate admin token failed: %v", err)
	}
	if _, err := userSvc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenAudienceIsolatedWithSharedSecret(t *testing.T) {
	db := setupServiceTestDB(t)
	cfg := newTestAuthConfig()
	cfg.UserJWT.SecretKey = cfg.JWT.SecretKey
	userSvc := NewUserAuthService(cfg, repository.NewUserRepository(db))
	adminSvc := NewAuthService(cfg, repository.NewAdminRepository(db))

	token, expiresAt, err := userSvc.IssueToken(&models.User{ID: 7, Email: "reader@example.com"})
	if err != nil {
		t.Fatalf("issue user token failed: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry to be reported")
	}
	if _, err := adminSvc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("admin realm should reject user token, got %v", err)
	}
	claims, err := userSvc.ParseToken(token)
	if err != nil || claims.Subject != "7" {
		t.Fatalf("unexpected user claims: %+v err=%v", claims, err)
	}
}

func TestAdminLoginAndChangePassword(t *testing.T) {
	db := setupServiceTestDB(t)
	hash, err := HashPassword("admin12345")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	admin := &models.Admin{Username: "admin", PasswordHash: hash, IsSuper: true}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	svc := NewAuthService(newTestAuthConfig(), repository.NewAdminRepository(db))

	_, token, _, err := svc.Login("admin", "admin12345")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	claims, err := svc.ParseToken(token)
	if err != nil || claims.AdminID != admin.ID {
		t.Fatalf("unexpected claims: %+v err=%v", claims, err)
	}
	if _, _, _, err := svc.Login("admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "admin12345", "new-secret-1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	updated, err := svc.GetAdmin(admin.ID)
	if err != nil {
		t.Fatalf("get admin failed: %v", err)
	}
	if updated.TokenVersion != 1 {
		t.Fatalf("expected token version bump, got %d", updated.TokenVersion)
	}
	if _, _, _, err := svc.Login("admin", "new-secret-1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true}
	if err := validatePassword(policy, "abcdefgh"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected digit requirement, got %v", err)
	}
	if err := validatePassword(policy, "abcdefg1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if err := validatePassword(config.PasswordPolicyConfig{}, string(long)+"1"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected max length rejection, got %v", err)
	}
}
