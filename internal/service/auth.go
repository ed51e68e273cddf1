package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/policy"
	"auth-dashboard/internal/repository"
)

// expiredGrace 對應保留到 token 過期之後，讓過期 token 回報 TokenExpired 而非 InvalidToken
const expiredGrace = time.Hour

// 測試時可替換
var randIntN = rand.IntN

// randomAvatar 隨機挑一張 reqres 頭像
func randomAvatar() string {
	return fmt.Sprintf("https://reqres.in/img/faces/%d-image.jpg", randIntN(12)+1)
}

// cleanEmail 儲存前去除前後空白；大小寫保留，查詢時完全比對
func cleanEmail(email string) string {
	return strings.TrimSpace(email)
}

// Option 設定 AuthService / UserService
type Option func(*options)

type options struct {
	hasher PasswordHasher
	logger logging.Logger
}

func WithHasher(h PasswordHasher) Option {
	return func(o *options) { o.hasher = h }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{hasher: BcryptHasher{}, logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AuthService 將帳密轉換成 session，並維護 token → 使用者的對應
type AuthService struct {
	repo   repository.UserRepository
	tokens cache.TokenStore
	issuer *JWTIssuer
	hasher PasswordHasher
	logger logging.Logger
}

func NewAuthService(repo repository.UserRepository, tokens cache.TokenStore, issuer *JWTIssuer, opts ...Option) *AuthService {
	o := buildOptions(opts)
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		issuer: issuer,
		hasher: o.hasher,
		logger: o.logger,
	}
}

// Login email 與密碼完全相符且已核准才發 token；未知 email 與錯誤密碼回傳相同錯誤
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info(ctx, "login rejected", "reason", KindInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.logger.Info(ctx, "login rejected", "reason", KindInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if policy.CheckApproved(u) != policy.Allowed {
		s.logger.Info(ctx, "login rejected", "reason", KindPendingApproval, "user_id", u.ID)
		return nil, ErrPendingApproval
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user logged in", "user_id", u.ID)
	return sess, nil
}

// Register 建立待核准的使用者並直接發 token
func (s *AuthService) Register(ctx context.Context, p model.Profile, password string) (*model.Session, error) {
	// 不分大小寫的重複檢查由 repository 的 Insert 負責
	email := cleanEmail(p.Email)
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable(err)
	}

	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, unavailable(fmt.Errorf("Register: %w", err))
	}
	avatar := p.Avatar
	if avatar == "" {
		avatar = randomAvatar()
	}
	u, err := s.repo.Insert(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Avatar:       avatar,
		IsApproved:   false,
		IsAdmin:      false,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, unavailable(err)
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user registered", "user_id", u.ID, "email", u.Email)
	return sess, nil
}

func (s *AuthService) openSession(ctx context.Context, u *model.User) (*model.Session, error) {
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	ttl := s.issuer.TTL()
	if ttl > 0 {
		ttl += expiredGrace
	}
	if err := s.tokens.Put(ctx, token, u.ID, ttl); err != nil {
		return nil, unavailable(err)
	}
	return &model.Session{Token: token, User: u}, nil
}

// GetCurrentUser 每次都重新讀取使用者，核准狀態的變更立即可見
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	id, err := s.tokens.Lookup(ctx, token)
	if errors.Is(err, cache.ErrTokenNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, unavailable(err)
	}

	claims, err := s.issuer.Verify(token)
	if errors.Is(err, errTokenExpired) {
		if err := s.tokens.Remove(ctx, token); err != nil {
			s.logger.Warn(ctx, "drop expired token", "error", err)
		}
		return nil, ErrTokenExpired
	}
	if err != nil || claims.UserID != id {
		return nil, ErrInvalidToken
	}

	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return u, nil
}

// ClearToken 移除對應；未知 token 也不回傳錯誤
func (s *AuthService) ClearToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Remove(ctx, token); err != nil {
		return unavailable(err)
	}
	return nil
}
