// Package cache 保存 token → 使用者 ID 的對應。單一行程用 MemoryTokens，
// 多個 API 實例共用時用 Redis。
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 是 RedisTokens 與健康檢查會用到的 *redis.Client 方法
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set ttl <= 0 表示不設過期
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// FakeCache 測試用；未設定 Fn 的方法被呼叫時 panic，Close 例外
type FakeCache struct {
	GetFn   func(ctx context.Context, key string) *redis.StringCmd
	SetFn   func(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	DelFn   func(ctx context.Context, keys ...string) *redis.IntCmd
	PingFn  func(ctx context.Context) *redis.StatusCmd
	CloseFn func() error
}

func (f *FakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.GetFn == nil {
		panic("unexpected Get")
	}
	return f.GetFn(ctx, key)
}

func (f *FakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.SetFn == nil {
		panic("unexpected Set")
	}
	return f.SetFn(ctx, key, value, ttl)
}

func (f *FakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.DelFn == nil {
		panic("unexpected Del")
	}
	return f.DelFn(ctx, keys...)
}

func (f *FakeCache) Ping(ctx context.Context) *redis.StatusCmd {
	if f.PingFn == nil {
		panic("unexpected Ping")
	}
	return f.PingFn(ctx)
}

func (f *FakeCache) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
