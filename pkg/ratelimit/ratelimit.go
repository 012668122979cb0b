package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrLimitExceeded 当前窗口内次数已用完
var ErrLimitExceeded = errors.New("rate limit exceeded")

// 固定窗口计数：首次计数时设置过期时间，超过上限时不再累加
var allowScript = redis.NewScript(`local current = redis.call('GET', KEYS[1])
if current ~= false and tonumber(current) >= tonumber(ARGV[1]) then
	return tonumber(current) + 1
end

local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
end
return count`)

// Limiter 基于Redis的固定窗口限流器
type Limiter struct {
	client    *redis.Client
	limit     int
	keyPrefix string
	window    time.Duration
}

// New 创建限流器，limit <= 0 表示不限流
func New(client *redis.Client, limit int, keyPrefix string, window time.Duration) *Limiter {
	return &Limiter{
		client:    client,
		limit:     limit,
		keyPrefix: keyPrefix,
		window:    window,
	}
}

// NewFromURL 根据 redis:// 地址创建限流器，地址为空时返回 nil
func NewFromURL(rawURL string, limit int, keyPrefix string, window time.Duration) (*Limiter, error) {
	if rawURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("解析Redis地址失败: %w", err)
	}
	return New(redis.NewClient(opts), limit, keyPrefix, window), nil
}

// Key 返回标识对应的Redis键
func (l *Limiter) Key(id string) string {
	return l.keyPrefix + id
}

// Enabled 是否启用限流
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.limit > 0
}

// Allow 记录一次请求，超过上限返回 ErrLimitExceeded
func (l *Limiter) Allow(ctx context.Context, id string) error {
	if !l.Enabled() {
		return nil
	}

	key := l.Key(id)
	result, err := allowScript.Run(ctx, l.client, []string{key}, l.limit, int(l.window.Seconds())).Int()
	if err != nil {
		return fmt.Errorf("执行Lua脚本失败: %w", err)
	}

	if result > l.limit {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"limit": l.limit,
		}).Warn("rate limit exceeded")
		return ErrLimitExceeded
	}

	logrus.WithFields(logrus.Fields{
		"key":   key,
		"count": result,
	}).Debug("rate limit hit recorded")
	return nil
}

// Current 获取当前窗口内的计数
func (l *Limiter) Current(ctx context.Context, id string) (int, error) {
	if !l.Enabled() {
		return 0, nil
	}
	current, err := l.client.Get(ctx, l.Key(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("获取当前计数失败: %w", err)
	}
	return current, nil
}

// Limit 获取上限
func (l *Limiter) Limit() int {
	if l == nil {
		return 0
	}
	return l.limit
}

// Close 关闭Redis连接
func (l *Limiter) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}
