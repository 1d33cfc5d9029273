package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/readrover/internal/config"
	"github.com/readrover/internal/http/handlers/shared"
	"github.com/readrover/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流主体
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 滑动窗口限流规则
type RateLimitRule struct {
	Prefix  string
	Window  time.Duration
	Limit   int
	Block   time.Duration // 超限后整段封禁，0 表示仅按窗口限流
	Message string
}

func newRateLimitRule(prefix string, cfg config.RateLimitConfig, message string) RateLimitRule {
	return RateLimitRule{
		Prefix:  prefix,
		Window:  time.Duration(cfg.WindowSeconds) * time.Second,
		Limit:   cfg.MaxAttempts,
		Block:   time.Duration(cfg.BlockSeconds) * time.Second,
		Message: message,
	}
}

func (r RateLimitRule) enabled() bool {
	return r.Window > 0 && r.Limit > 0
}

// RateLimitMiddleware 基于 Redis 有序集合的滑动窗口限流
// 未配置 Redis 时不限流；Redis 出错时放行并记录日志。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}
		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := subject
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + subject
		}

		allowed, wait, err := rule.take(c.Request.Context(), client, key, time.Now())
		if err != nil {
			shared.RequestLog(c).Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}
		seconds := int(math.Ceil(wait.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		msg := rule.Message
		if msg == "" {
			msg = "Too many requests"
		}
		shared.RequestLog(c).Infow("rate_limit_rejected", "key", key, "retry_after", seconds)
		response.Error(c, response.CodeTooManyRequests, fmt.Sprintf("%s, retry in %ds", msg, seconds))
		c.Abort()
	}
}

// take 记录一次访问，返回是否放行及需等待的时长
func (r RateLimitRule) take(ctx context.Context, client *redis.Client, key string, now time.Time) (bool, time.Duration, error) {
	blockKey := key + ":block"
	if r.Block > 0 {
		ttl, err := client.PTTL(ctx, blockKey).Result()
		if err != nil {
			return false, 0, err
		}
		if ttl > 0 {
			return false, ttl, nil
		}
	}

	nowMs := now.UnixMilli()
	var (
		size   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(nowMs-r.Window.Milliseconds(), 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
		size = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, r.Window)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if size.Val() <= int64(r.Limit) {
		return true, 0, nil
	}
	if r.Block > 0 {
		if err := client.Set(ctx, blockKey, 1, r.Block).Err(); err != nil {
			return false, 0, err
		}
		return false, r.Block, nil
	}
	var oldestMs int64
	if entries := oldest.Val(); len(entries) > 0 {
		oldestMs = int64(entries[0].Score)
	}
	return false, r.retryAfter(oldestMs, nowMs), nil
}

// retryAfter 最早一条记录滑出窗口所需时间，至少 1 秒
func (r RateLimitRule) retryAfter(oldestMs, nowMs int64) time.Duration {
	wait := r.Window
	if oldestMs > 0 {
		wait = time.Duration(oldestMs+r.Window.Milliseconds()-nowMs) * time.Millisecond
	}
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）+ IP 限流，字段缺失时退化为 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		return joinRateLimitKey(strings.ToLower(peekJSONField(c, field)), c.ClientIP())
	}
}

// KeyByIPAndQuery 按查询参数 + IP 限流
func KeyByIPAndQuery(param string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		return joinRateLimitKey(c.Query(param), c.ClientIP())
	}
}

func joinRateLimitKey(value, ip string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ip
	}
	return value + "|" + ip
}

// peekJSONField 读取请求体中的字符串字段，读取后重置 Body 供后续绑定
func peekJSONField(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	var value string
	if json.Unmarshal(payload[field], &value) != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
