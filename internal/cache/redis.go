package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/constants"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// store 带前缀的 Redis 连接；为 nil 时缓存整体关闭
type store struct {
	client *redis.Client
	prefix string
}

var current *store

// InitRedis 按配置连接 Redis；连通性检查失败只返回错误，连接仍保留以便恢复后继续使用
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		current = nil
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	current = &store{
		client: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return current.client.Ping(ctx).Err()
}

// Enabled 缓存是否可用
func Enabled() bool {
	return current != nil
}

// Client 原始客户端（限流使用），未启用时为 nil
func Client() *redis.Client {
	if current == nil {
		return nil
	}
	return current.client
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if current == nil {
		return false, nil
	}
	raw, err := current.client.Get(ctx, current.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if current == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return current.client.Set(ctx, current.key(key), payload, ttl).Err()
}

// Incr 计数器自增，未启用时返回 0
func Incr(ctx context.Context, key string) (int64, error) {
	if current == nil {
		return 0, nil
	}
	return current.client.Incr(ctx, current.key(key)).Result()
}

// GetInt64 读取计数器，不存在视为 0
func GetInt64(ctx context.Context, key string) (int64, error) {
	if current == nil {
		return 0, nil
	}
	value, err := current.client.Get(ctx, current.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return value, err
}

func (s *store) key(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.prefix
	}
	return s.prefix + ":" + key
}
