package service

import (
	"context"
	"fmt"
	"time"

	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/repository"
)

// DefaultUser 空集合啟動時建立的帳號
type DefaultUser struct {
	User     model.User
	Password string
}

var seedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultUsers 一般使用者與管理員各一
func DefaultUsers() []DefaultUser {
	return []DefaultUser{
		{
			User: model.User{
				Email:      "test@example.com",
				FirstName:  "John",
				LastName:   "Doe",
				Avatar:     "https://reqres.in/img/faces/1-image.jpg",
				IsApproved: true,
				CreatedAt:  seedTime,
			},
			Password: "password123",
		},
		{
			User: model.User{
				Email:      "admin@example.com",
				FirstName:  "Jane",
				LastName:   "Smith",
				Avatar:     "https://reqres.in/img/faces/2-image.jpg",
				IsApproved: true,
				IsAdmin:    true,
				CreatedAt:  seedTime,
			},
			Password: "admin123",
		},
	}
}

// EnsureDefaultUsers 只在集合為空時建立預設帳號，回傳建立的筆數
func EnsureDefaultUsers(ctx context.Context, repo repository.UserRepository, hasher PasswordHasher, logger logging.Logger) (int, error) {
	page, err := repo.ListApproved(ctx, 1, 1)
	if err != nil {
		return 0, fmt.Errorf("EnsureDefaultUsers: %w", err)
	}
	pending, err := repo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("EnsureDefaultUsers: %w", err)
	}
	if page.Total > 0 || len(pending) > 0 {
		return 0, nil
	}

	for _, d := range DefaultUsers() {
		hash, err := hasher.Hash(d.Password)
		if err != nil {
			return 0, fmt.Errorf("EnsureDefaultUsers: %w", err)
		}
		u := d.User
		u.PasswordHash = hash
		if _, err := repo.Insert(ctx, &u); err != nil {
			return 0, fmt.Errorf("EnsureDefaultUsers: %w", err)
		}
	}
	logger.Info(ctx, "seeded default users", "count", len(DefaultUsers()))
	return len(DefaultUsers()), nil
}
