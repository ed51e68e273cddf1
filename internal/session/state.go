package session

import (
	"context"

	"auth-dashboard/internal/model"
)

// Phase 主狀態；Loading 與之正交
type Phase int

const (
	Uninitialized Phase = iota
	Initializing
	Authenticated
	Unauthenticated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// State 某一時間點的 session 快照，取得後不會再被修改
type State struct {
	Phase   Phase
	Token   string
	User    *model.User
	Loading bool
	Error   string
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// IsAuthenticated token 與 user 都存在
func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// IsInitializing 啟動時正在驗證保存的 token
func (s State) IsInitializing() bool {
	return s.Phase == Initializing
}

// CurrentUser 未登入時回傳 nil
func (s State) CurrentUser() *model.User {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.User
}

// Credentials 登入表單
type Credentials struct {
	Email    string
	Password string
}

// Registration 註冊表單
type Registration struct {
	Profile  model.Profile
	Password string
}

// Authenticator 由 service.AuthService（同行程）或 HTTP client 實作
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, p model.Profile, password string) (*model.Session, error)
	GetCurrentUser(ctx context.Context, token string) (*model.User, error)
	ClearToken(ctx context.Context, token string) error
}
