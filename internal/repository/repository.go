// File: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"auth-dashboard/internal/model"
)

// DefaultPageSize 已核准使用者列表每頁筆數
const DefaultPageSize = 6

var (
	// ErrNotFound 查無使用者
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail Email 已被使用
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// UserRepository 使用者集合的持久化契約
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	// Insert 指派新的 ID（大於現有所有 ID）並回傳建立結果
	Insert(ctx context.Context, u *model.User) (*model.User, error)
	Update(ctx context.Context, id int, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id int) error
	ListApproved(ctx context.Context, page, pageSize int) (model.Page, error)
	ListPending(ctx context.Context) ([]model.User, error)
	Ping(ctx context.Context) error
}

// normalizePage 頁碼從 1 開始；pageSize<=0 使用預設值
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	return (total + pageSize - 1) / pageSize
}
