package service

import (
	"context"
	"errors"
	"testing"

	"auth-dashboard/internal/model"

	"github.com/stretchr/testify/require"
)

func TestUserServiceCRUD(t *testing.T) {
	t.Cleanup(restoreGlobals)
	randIntN = func(int) int { return 0 }
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, model.Profile{Email: " Made@X.com", FirstName: "M", LastName: "U"})
	require.NoError(t, err)
	require.Equal(t, "Made@X.com", created.Email)
	require.True(t, created.IsApproved)
	require.False(t, created.IsAdmin)
	require.Empty(t, created.PasswordHash)
	require.Equal(t, "https://reqres.in/img/faces/1-image.jpg", created.Avatar)

	_, err = f.users.Create(ctx, model.Profile{Email: "made@x.com"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := f.users.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, got.Email)

	email := "RENAMED@x.com"
	updated, err := f.users.Update(ctx, created.ID, model.UserPatch{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "RENAMED@x.com", updated.Email)

	taken := "test@example.com"
	_, err = f.users.Update(ctx, created.ID, model.UserPatch{Email: &taken})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	require.NoError(t, f.users.Delete(ctx, created.ID))
	require.ErrorIs(t, f.users.Delete(ctx, created.ID), ErrUserNotFound)
	_, err = f.users.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.users.Update(ctx, created.ID, model.UserPatch{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		_, err := f.users.Create(ctx, model.Profile{Email: email})
		require.NoError(t, err)
	}
	_, err := f.auth.Register(ctx, model.Profile{Email: "pending@x.com"}, "secret1")
	require.NoError(t, err)

	page, err := f.users.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)
	require.Equal(t, 6, page.PerPage)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 6)

	page, err = f.users.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestUserServiceApprovalFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.users.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	a, err := f.auth.Register(ctx, model.Profile{Email: "a@x.com"}, "secret1")
	require.NoError(t, err)
	b, err := f.auth.Register(ctx, model.Profile{Email: "b@x.com"}, "secret1")
	require.NoError(t, err)

	pending, err = f.users.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	ok, err := f.users.CheckApproval(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, ok)

	approved, err := f.users.Approve(ctx, a.User.ID)
	require.NoError(t, err)
	require.True(t, approved.IsApproved)
	ok, err = f.users.CheckApproval(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.users.CheckApproval(ctx, "A@x.com")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, f.users.Reject(ctx, b.User.ID))
	_, err = f.users.Get(ctx, b.User.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, f.users.Reject(ctx, b.User.ID), ErrUserNotFound)
	_, err = f.users.Approve(ctx, b.User.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	pending, err = f.users.Pending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestUserServiceChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	isAdmin, err := f.users.CheckAdmin(ctx, "admin@example.com")
	require.NoError(t, err)
	require.True(t, isAdmin)

	isAdmin, err = f.users.CheckAdmin(ctx, "test@example.com")
	require.NoError(t, err)
	require.False(t, isAdmin)

	isAdmin, err = f.users.CheckAdmin(ctx, "ghost@example.com")
	require.NoError(t, err)
	require.False(t, isAdmin)

	approved, err := f.users.CheckApproval(ctx, "ghost@example.com")
	require.NoError(t, err)
	require.False(t, approved)
}

func TestUserServiceRepositoryFailures(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(brokenRepo{err: errors.New("down")})

	_, err := s.List(ctx, 1)
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	_, err = s.Get(ctx, 1)
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	_, err = s.Create(ctx, model.Profile{Email: "a@b.co"})
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	_, err = s.Pending(ctx)
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	_, err = s.Approve(ctx, 1)
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
	require.ErrorIs(t, s.Reject(ctx, 1), ErrRepositoryUnavailable)
	_, err = s.CheckAdmin(ctx, "a@b.co")
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
}
