package service

import (
	"context"
	"errors"
	"strings"

	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/repository"
)

// UserService 儀表板的使用者管理與核准流程
type UserService struct {
	repo   repository.UserRepository
	logger logging.Logger
}

func NewUserService(repo repository.UserRepository, opts ...Option) *UserService {
	o := buildOptions(opts)
	return &UserService{repo: repo, logger: o.logger}
}

// mapRepoErr 將 repository 錯誤轉成分類錯誤
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	}
	return unavailable(err)
}

// List 已核准使用者，每頁 repository.DefaultPageSize 筆
func (s *UserService) List(ctx context.Context, page int) (model.Page, error) {
	res, err := s.repo.ListApproved(ctx, page, repository.DefaultPageSize)
	if err != nil {
		return model.Page{}, mapRepoErr(err)
	}
	return res, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

// Create 管理員建立的使用者直接核准，且沒有密碼（無法登入）
func (s *UserService) Create(ctx context.Context, p model.Profile) (*model.User, error) {
	avatar := strings.TrimSpace(p.Avatar)
	if avatar == "" {
		avatar = randomAvatar()
	}
	u, err := s.repo.Insert(ctx, &model.User{
		Email:      cleanEmail(p.Email),
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Avatar:     avatar,
		IsApproved: true,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.logger.Info(ctx, "user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id int, patch model.UserPatch) (*model.User, error) {
	if patch.Email != nil {
		email := cleanEmail(*patch.Email)
		patch.Email = &email
	}
	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// Pending 待核准的使用者
func (s *UserService) Pending(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return users, nil
}

func (s *UserService) Approve(ctx context.Context, id int) (*model.User, error) {
	approved := true
	u, err := s.repo.Update(ctx, id, model.UserPatch{IsApproved: &approved})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.logger.Info(ctx, "user approved", "user_id", id, "email", u.Email)
	return u, nil
}

// Reject 拒絕即刪除
func (s *UserService) Reject(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.logger.Info(ctx, "user rejected", "user_id", id)
	return nil
}

// CheckApproval 未知 email 回傳 false
func (s *UserService) CheckApproval(ctx context.Context, email string) (bool, error) {
	u, err := s.lookup(ctx, email)
	if err != nil || u == nil {
		return false, err
	}
	return u.IsApproved, nil
}

// CheckAdmin 未知 email 回傳 false
func (s *UserService) CheckAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.lookup(ctx, email)
	if err != nil || u == nil {
		return false, err
	}
	return u.IsAdmin, nil
}

func (s *UserService) lookup(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return u, nil
}
