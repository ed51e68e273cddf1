package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"auth-dashboard/internal/model"
	"auth-dashboard/internal/service"

	"github.com/stretchr/testify/require"
)

func TestInitializeWithoutToken(t *testing.T) {
	s := NewStore(&fakeAuth{})
	require.Equal(t, Uninitialized, s.Snapshot().Phase)

	s.Initialize(context.Background())
	st := s.Snapshot()
	require.Equal(t, Unauthenticated, st.Phase)
	require.False(t, st.IsAuthenticated())
	require.Nil(t, st.CurrentUser())
}

func TestInitializeRestoresSession(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	sess, err := b.auth.Login(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	persist := NewMemoryPersister(sess.Token)
	s := NewStore(b.auth, WithPersister(persist))

	var phases []Phase
	cancel := s.Subscribe(func(st State) { phases = append(phases, st.Phase) })
	defer cancel()

	s.Initialize(ctx)
	st := s.Snapshot()
	require.Equal(t, []Phase{Initializing, Authenticated}, phases)
	require.True(t, st.IsAuthenticated())
	require.Equal(t, "test@example.com", st.CurrentUser().Email)
}

func TestInitializeWithTokenForDeletedUser(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	sess, err := b.auth.Login(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, b.users.Delete(ctx, sess.User.ID))

	persist := NewMemoryPersister(sess.Token)
	s := NewStore(b.auth, WithPersister(persist))
	s.Initialize(ctx)

	st := s.Snapshot()
	require.Equal(t, Unauthenticated, st.Phase)
	require.False(t, st.IsAuthenticated())
	require.Empty(t, st.Error)
	token, err := persist.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestInitializeToleratesPersisterFailure(t *testing.T) {
	s := NewStore(&fakeAuth{}, WithPersister(brokenPersister{err: errors.New("disk")}))
	s.Initialize(context.Background())
	require.Equal(t, Unauthenticated, s.Snapshot().Phase)
}

func TestLoginSuccess(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	persist := NewMemoryPersister("")
	s := NewStore(b.auth, WithPersister(persist))
	s.Initialize(ctx)

	var sawLoading bool
	s.Subscribe(func(st State) { sawLoading = sawLoading || st.Loading })

	require.NoError(t, s.Login(ctx, Credentials{Email: "test@example.com", Password: "password123"}))
	st := s.Snapshot()
	require.True(t, sawLoading)
	require.False(t, st.Loading)
	require.Equal(t, Authenticated, st.Phase)
	require.True(t, st.IsAuthenticated())

	token, err := persist.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, st.Token, token)
}

func TestLoginFailureAppliesNothing(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	persist := NewMemoryPersister("")
	s := NewStore(b.auth, WithPersister(persist))
	s.Initialize(ctx)

	err := s.Login(ctx, Credentials{Email: "test@example.com", Password: "wrong"})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	st := s.Snapshot()
	require.Equal(t, Unauthenticated, st.Phase)
	require.False(t, st.Loading)
	require.Equal(t, "Invalid email or password", st.Error)
	require.Empty(t, st.Token)
	require.Nil(t, st.User)
	token, _ := persist.Load(ctx)
	require.Empty(t, token)

	s.ClearError()
	require.Empty(t, s.Snapshot().Error)
	require.Equal(t, Unauthenticated, s.Snapshot().Phase)
}

func TestLoginPendingApproval(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	_, err := b.auth.Register(ctx, model.Profile{Email: "new@x.com"}, "secret1")
	require.NoError(t, err)

	s := NewStore(b.auth)
	err = s.Login(ctx, Credentials{Email: "new@x.com", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrPendingApproval)
	require.Contains(t, s.Snapshot().Error, "pending admin approval")
}

func TestLoginPersistFailureReleasesToken(t *testing.T) {
	var cleared string
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t1", User: &model.User{ID: 1}}, nil
		},
		ClearTokenFn: func(_ context.Context, token string) error { cleared = token; return nil },
	}
	s := NewStore(auth, WithPersister(brokenPersister{err: errors.New("disk full")}))
	err := s.Login(context.Background(), Credentials{})
	require.ErrorContains(t, err, "persist token: disk full")
	require.Equal(t, "t1", cleared)
	require.False(t, s.Snapshot().IsAuthenticated())
}

func TestLoginIncompleteSession(t *testing.T) {
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t1"}, nil
		},
	}
	s := NewStore(auth)
	require.Error(t, s.Login(context.Background(), Credentials{}))
	require.False(t, s.Snapshot().IsAuthenticated())
}

func TestRegisterYieldsUnapprovedSession(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	s := NewStore(b.auth)

	err := s.Register(ctx, Registration{
		Profile:  model.Profile{Email: "new@x.com", FirstName: "A", LastName: "B"},
		Password: "secret1",
	})
	require.NoError(t, err)
	st := s.Snapshot()
	require.True(t, st.IsAuthenticated())
	require.False(t, st.User.IsApproved)

	err = s.Register(ctx, Registration{Profile: model.Profile{Email: "new@x.com"}, Password: "secret1"})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)
	// 先前的 session 不受影響
	require.True(t, s.Snapshot().IsAuthenticated())
	require.Equal(t, st.Token, s.Snapshot().Token)
}

func TestLogoutIsIdempotent(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	persist := NewMemoryPersister("")
	s := NewStore(b.auth, WithPersister(persist))
	require.NoError(t, s.Login(ctx, Credentials{Email: "test@example.com", Password: "password123"}))
	token := s.Snapshot().Token

	s.Logout(ctx)
	require.Equal(t, Unauthenticated, s.Snapshot().Phase)
	s.Logout(ctx)
	require.Equal(t, Unauthenticated, s.Snapshot().Phase)
	require.False(t, s.Snapshot().IsAuthenticated())

	saved, _ := persist.Load(ctx)
	require.Empty(t, saved)
	_, err := b.auth.GetCurrentUser(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutToleratesServiceFailure(t *testing.T) {
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t1", User: &model.User{ID: 1}}, nil
		},
		ClearTokenFn: func(context.Context, string) error { return errors.New("offline") },
	}
	s := NewStore(auth)
	require.NoError(t, s.Login(context.Background(), Credentials{}))
	s.Logout(context.Background())
	require.False(t, s.Snapshot().IsAuthenticated())
}

func TestStaleLoginIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var cleared []string
	auth := &fakeAuth{
		LoginFn: func(_ context.Context, email, _ string) (*model.Session, error) {
			if email == "slow@x.com" {
				close(started)
				<-release
				return &model.Session{Token: "slow", User: &model.User{ID: 1, Email: email}}, nil
			}
			return &model.Session{Token: "fast", User: &model.User{ID: 2, Email: email}}, nil
		},
		ClearTokenFn: func(_ context.Context, token string) error {
			mu.Lock()
			cleared = append(cleared, token)
			mu.Unlock()
			return nil
		},
	}
	persist := NewMemoryPersister("")
	s := NewStore(auth, WithPersister(persist))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Login(ctx, Credentials{Email: "slow@x.com"}) }()
	<-started

	require.NoError(t, s.Login(ctx, Credentials{Email: "fast@x.com"}))
	close(release)
	require.ErrorIs(t, <-done, ErrSuperseded)

	st := s.Snapshot()
	require.Equal(t, "fast", st.Token)
	require.Equal(t, "fast@x.com", st.User.Email)
	saved, _ := persist.Load(ctx)
	require.Equal(t, "fast", saved)
	mu.Lock()
	require.Equal(t, []string{"slow"}, cleared)
	mu.Unlock()
}

func TestLogoutDuringLoginWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var cleared []string
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			close(started)
			<-release
			return &model.Session{Token: "late", User: &model.User{ID: 1}}, nil
		},
		ClearTokenFn: func(_ context.Context, token string) error {
			cleared = append(cleared, token)
			return nil
		},
	}
	persist := NewMemoryPersister("")
	s := NewStore(auth, WithPersister(persist))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Login(ctx, Credentials{}) }()
	<-started
	s.Logout(ctx)
	close(release)
	require.ErrorIs(t, <-done, ErrSuperseded)

	st := s.Snapshot()
	require.False(t, st.IsAuthenticated())
	require.False(t, st.Loading)
	saved, _ := persist.Load(ctx)
	require.Empty(t, saved)
	require.Equal(t, []string{"late"}, cleared)
}

func TestStaleFailureLeavesNewerState(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	auth := &fakeAuth{
		LoginFn: func(_ context.Context, email, _ string) (*model.Session, error) {
			if email == "slow@x.com" {
				close(started)
				<-release
				return nil, service.ErrInvalidCredentials
			}
			return &model.Session{Token: "fast", User: &model.User{ID: 2}}, nil
		},
	}
	s := NewStore(auth)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Login(ctx, Credentials{Email: "slow@x.com"}) }()
	<-started
	require.NoError(t, s.Login(ctx, Credentials{Email: "fast@x.com"}))
	close(release)
	require.ErrorIs(t, <-done, service.ErrInvalidCredentials)
	require.Empty(t, s.Snapshot().Error)
	require.True(t, s.Snapshot().IsAuthenticated())
}

func TestRefresh(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	s := NewStore(b.auth)
	require.NoError(t, s.Refresh(ctx), "no session is a no-op")

	require.NoError(t, s.Register(ctx, Registration{Profile: model.Profile{Email: "new@x.com"}, Password: "secret1"}))
	id := s.Snapshot().User.ID
	_, err := b.users.Approve(ctx, id)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx))
	require.True(t, s.Snapshot().User.IsApproved)

	require.NoError(t, b.users.Delete(ctx, id))
	require.ErrorIs(t, s.Refresh(ctx), service.ErrUserNotFound)
	require.False(t, s.Snapshot().IsAuthenticated())
}

func TestRefreshKeepsSessionWhenRepositoryDown(t *testing.T) {
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t", User: &model.User{ID: 1}}, nil
		},
		GetCurrentUserFn: func(context.Context, string) (*model.User, error) {
			return nil, &service.AuthError{Kind: service.KindRepositoryUnavailable, Message: "down"}
		},
	}
	s := NewStore(auth)
	require.NoError(t, s.Login(context.Background(), Credentials{}))
	require.ErrorIs(t, s.Refresh(context.Background()), service.ErrRepositoryUnavailable)
	require.True(t, s.Snapshot().IsAuthenticated())
	require.Equal(t, "down", s.Snapshot().Error)
}

func TestSnapshotIsACopy(t *testing.T) {
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t", User: &model.User{ID: 1, Email: "a@x.com"}}, nil
		},
	}
	s := NewStore(auth)
	require.NoError(t, s.Login(context.Background(), Credentials{}))
	st := s.Snapshot()
	st.User.Email = "mutated"
	require.Equal(t, "a@x.com", s.Snapshot().User.Email)
}

func TestSubscribeCancel(t *testing.T) {
	s := NewStore(&fakeAuth{})
	calls := 0
	cancel := s.Subscribe(func(State) { calls++ })
	s.ClearError()
	cancel()
	s.ClearError()
	require.Equal(t, 1, calls)
}

func TestSubscriberCanReadSnapshot(t *testing.T) {
	auth := &fakeAuth{
		LoginFn: func(context.Context, string, string) (*model.Session, error) {
			return &model.Session{Token: "t", User: &model.User{ID: 1, Email: "a@x.com", IsApproved: true}}, nil
		},
	}
	s := NewStore(auth)

	var seen []State
	s.Subscribe(func(st State) {
		// 通知時已釋放狀態鎖，Snapshot 與通知內容一致
		snap := s.Snapshot()
		require.Equal(t, st.Phase, snap.Phase)
		require.Equal(t, st.Loading, snap.Loading)
		seen = append(seen, snap)
	})

	require.NoError(t, s.Login(context.Background(), Credentials{Email: "a@x.com", Password: "pw"}))
	require.Len(t, seen, 2)
	require.True(t, seen[0].Loading)
	require.True(t, seen[1].IsAuthenticated())
	require.False(t, seen[1].Loading)
}

type brokenPersister struct{ err error }

func (b brokenPersister) Load(context.Context) (string, error) { return "", b.err }
func (b brokenPersister) Save(context.Context, string) error   { return b.err }
func (b brokenPersister) Remove(context.Context) error         { return b.err }
