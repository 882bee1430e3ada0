// Package ratelimit 基于 Redis ZSET 的滑动窗口限流。
// 多实例部署共享同一计数，替代单进程内存限流。
package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Limiter struct {
	rdb    *redis.Client
	prefix string
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, prefix: "ratelimit:"}
}

// Allow 判断 key 在窗口内是否还有余量；有则记录本次事件。
// Redis 不可用时返回错误，由调用方决定放行或拒绝。
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	now := time.Now()
	redisKey := l.prefix + key
	windowStart := now.Add(-window).UnixNano()

	// 清理窗口外的事件
	if err := l.rdb.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart)).Err(); err != nil {
		return false, err
	}

	count, err := l.rdb.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count >= int64(limit) {
		return false, nil
	}

	member, err := randomMember()
	if err != nil {
		return false, err
	}

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func randomMember() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
