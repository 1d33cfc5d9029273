package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/readrover/internal/models"
)

// 鉴权快照缓存时长；改密或禁用时会主动覆盖
const authStateTTL = 10 * time.Minute

// UserAuthState 顾客鉴权快照
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	CachedAt     int64  `json:"cached_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	CachedAt     int64  `json:"cached_at"`
}

func authStateKey(realm string, id uint) string {
	return "auth:" + realm + ":" + strconv.FormatUint(uint64(id), 10)
}

func loadAuthState[T any](ctx context.Context, realm string, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	state := new(T)
	hit, err := GetJSON(ctx, authStateKey(realm, id), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

func storeAuthState(ctx context.Context, realm string, id uint, state interface{}) error {
	if id == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(realm, id), state, authStateTTL)
}

// BuildUserAuthState 由用户生成快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{UserID: user.ID, Status: user.Status, TokenVersion: user.TokenVersion, CachedAt: time.Now().Unix()}
}

// BuildAdminAuthState 由管理员生成快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		CachedAt:     time.Now().Unix(),
	}
}

func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return loadAuthState[UserAuthState](ctx, "user", userID)
}

func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return storeAuthState(ctx, "user", state.UserID, state)
}

func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return loadAuthState[AdminAuthState](ctx, "admin", adminID)
}

func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil {
		return nil
	}
	return storeAuthState(ctx, "admin", state.AdminID, state)
}
