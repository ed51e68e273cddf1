// Package config 從環境變數讀取服務端與客戶端設定；必要變數缺少時立即失敗
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	TokensMemory    = "memory"
	TokensRedis     = "redis"
)

// Service API 服務設定
type Service struct {
	HTTPAddr      string
	JWTSecret     string
	TokenTTL      time.Duration
	Storage       string
	UsersFile     string
	DatabaseURL   string
	Tokens        string
	RedisAddr     string
	RedisDB       int
	RedisPassword string
	WorkerCount   int
	BcryptCost    int
	LogLevel      string
}

// Client 終端機客戶端設定
type Client struct {
	APIURL      string
	TokenDB     string
	HTTPTimeout time.Duration
	LogLevel    string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("無效的 %s: %v", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("無效的 %s: %v", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("無效的 %s: 必須大於 0", key)
	}
	return d, nil
}

// LoadService 讀取服務端設定
func LoadService() (Service, error) {
	cfg := Service{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Storage:       envOr("STORAGE", StorageMemory),
		UsersFile:     envOr("USERS_FILE", "users.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Tokens:        envOr("TOKENS", TokensMemory),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
	}
	if cfg.JWTSecret == "" {
		return Service{}, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	var err error
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Service{}, err
	}

	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Service{}, fmt.Errorf("環境變數 DATABASE_URL 未設定")
		}
	default:
		return Service{}, fmt.Errorf("無效的 STORAGE: %q", cfg.Storage)
	}

	switch cfg.Tokens {
	case TokensMemory:
	case TokensRedis:
		if cfg.RedisAddr == "" {
			return Service{}, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
		}
	default:
		return Service{}, fmt.Errorf("無效的 TOKENS: %q", cfg.Tokens)
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Service{}, err
	}

	if cfg.WorkerCount, err = envInt("WORKER_COUNT", 1); err != nil {
		return Service{}, err
	}
	if cfg.WorkerCount <= 0 {
		return Service{}, fmt.Errorf("無效的 WORKER_COUNT: %d", cfg.WorkerCount)
	}
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", 0); err != nil {
		return Service{}, err
	}
	return cfg, nil
}

// LoadClient 讀取客戶端設定
func LoadClient() (Client, error) {
	cfg := Client{
		APIURL:   envOr("API_URL", "http://localhost:8080/api"),
		TokenDB:  envOr("TOKEN_DB", "client.db"),
		LogLevel: envOr("LOG_LEVEL", "warn"),
	}
	var err error
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Client{}, err
	}
	return cfg, nil
}
