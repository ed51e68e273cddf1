package session

import (
	"context"
	"testing"
	"time"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/repository"
	"auth-dashboard/internal/service"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeAuth 未設定的方法一律 panic
type fakeAuth struct {
	LoginFn          func(ctx context.Context, email, password string) (*model.Session, error)
	RegisterFn       func(ctx context.Context, p model.Profile, password string) (*model.Session, error)
	GetCurrentUserFn func(ctx context.Context, token string) (*model.User, error)
	ClearTokenFn     func(ctx context.Context, token string) error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password)
	}
	panic("unexpected Login")
}

func (f *fakeAuth) Register(ctx context.Context, p model.Profile, password string) (*model.Session, error) {
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, p, password)
	}
	panic("unexpected Register")
}

func (f *fakeAuth) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	if f.GetCurrentUserFn != nil {
		return f.GetCurrentUserFn(ctx, token)
	}
	panic("unexpected GetCurrentUser")
}

func (f *fakeAuth) ClearToken(ctx context.Context, token string) error {
	if f.ClearTokenFn != nil {
		return f.ClearTokenFn(ctx, token)
	}
	panic("unexpected ClearToken")
}

// backend 同行程的完整服務
type backend struct {
	repo  *repository.MemoryRepository
	auth  *service.AuthService
	users *service.UserService
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	ctx := context.Background()
	repo, err := repository.NewMemoryRepository()
	require.NoError(t, err)
	hasher := service.BcryptHasher{Cost: bcrypt.MinCost}
	_, err = service.EnsureDefaultUsers(ctx, repo, hasher, logging.Discard())
	require.NoError(t, err)
	issuer, err := service.NewJWTIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return &backend{
		repo:  repo,
		auth:  service.NewAuthService(repo, cache.NewMemoryTokens(), issuer, service.WithHasher(hasher)),
		users: service.NewUserService(repo),
	}
}
