package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultPingTimeout 啟動時連線檢查的上限
const defaultPingTimeout = 5 * time.Second

// RedisOptions 連線設定；PingTimeout 為 0 時使用 defaultPingTimeout
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	PingTimeout time.Duration
}

// 測試時可替換
var redisNewClient = func(opt *redis.Options) Cache {
	return redis.NewClient(opt)
}

// NewRedisClient 建立 client 並確認連得上；失敗時關閉 client
func NewRedisClient(ctx context.Context, o RedisOptions) (Cache, error) {
	client := redisNewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("NewRedisClient: %w", err)
	}
	return client, nil
}

const tokenKeyPrefix = "token:"

// RedisTokens 以 Redis key 保存對應，過期交給 Redis TTL
type RedisTokens struct {
	c Cache
}

func NewRedisTokens(c Cache) *RedisTokens {
	return &RedisTokens{c: c}
}

func (r *RedisTokens) Put(ctx context.Context, token string, userID int, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.c.Set(ctx, tokenKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}

func (r *RedisTokens) Lookup(ctx context.Context, token string) (int, error) {
	val, err := r.c.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("Lookup: %w", err)
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("Lookup: corrupt entry: %w", err)
	}
	return id, nil
}

func (r *RedisTokens) Remove(ctx context.Context, token string) error {
	if err := r.c.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	return nil
}
