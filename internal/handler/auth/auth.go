// Package auth 提供登入、註冊、目前使用者與登出的 HTTP handler
package auth

import (
	"context"

	"auth-dashboard/internal/model"
)

// Authenticator 是 handler 需要的 service.AuthService 方法
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, p model.Profile, password string) (*model.Session, error)
	ClearToken(ctx context.Context, token string) error
}
