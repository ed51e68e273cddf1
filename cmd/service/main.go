// File: cmd/service/main.go
// @title        Auth Dashboard API
// @version      1.0
// @description  登入、註冊、管理員核准與使用者管理的後端 API
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/config"
	"auth-dashboard/internal/database"
	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/repository"
	"auth-dashboard/internal/router"
	"auth-dashboard/internal/service"
	"auth-dashboard/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "auth-dashboard/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// snapshotQueue 快照寫入可排隊的數量
const snapshotQueue = 64

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.LoadService
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
	logOutput       io.Writer = os.Stderr
)

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logOutput, logging.ParseLevel(cfg.LogLevel))
	ctx := context.Background()

	wp := newWorkerPool(cfg.WorkerCount, snapshotQueue)
	defer wp.Stop()

	var repo repository.UserRepository
	switch cfg.Storage {
	case config.StoragePostgres:
		if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}
		db, err := newPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("DB 連線失敗: %v", err)
		}
		defer db.Close()
		repo = repository.NewPostgresRepository(db)
	default:
		mem, err := repository.NewMemoryRepository(
			repository.WithSnapshotFile(cfg.UsersFile),
			repository.WithWriter(wp),
			repository.WithLogger(logger.With("component", "repository")),
		)
		if err != nil {
			return fmt.Errorf("載入使用者失敗: %v", err)
		}
		repo = mem
	}

	var (
		tokens cache.TokenStore = cache.NewMemoryTokens()
		cch    cache.Cache
	)
	if cfg.Tokens == config.TokensRedis {
		cch, err = newRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("Redis 連線失敗: %v", err)
		}
		defer cch.Close()
		tokens = cache.NewRedisTokens(cch)
	}

	hasher := service.BcryptHasher{Cost: cfg.BcryptCost}
	if _, err := service.EnsureDefaultUsers(ctx, repo, hasher, logger); err != nil {
		return err
	}

	issuer, err := service.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	svcLogger := logger.With("component", "service")
	authSvc := service.NewAuthService(repo, tokens, issuer, service.WithHasher(hasher), service.WithLogger(svcLogger))
	userSvc := service.NewUserService(repo, service.WithLogger(svcLogger))

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	router.Setup(e, router.Deps{Auth: authSvc, Users: userSvc, Repo: repo, Cache: cch})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	logger.Info(ctx, "listening", "addr", cfg.HTTPAddr, "storage", cfg.Storage, "tokens", cfg.Tokens)
	return startServer(e, cfg.HTTPAddr)
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
