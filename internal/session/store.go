// Package session holds the client-side auth state machine: the current
// token and user, the orthogonal loading flag and the last error.
//
// Every operation bumps a generation counter. A login or registration that
// resolves after a newer operation started is discarded and its token is
// released, so the latest request always wins.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/service"
)

// ErrSuperseded 結果回來時已有較新的操作，結果被丟棄
var ErrSuperseded = errors.New("superseded by a newer session operation")

// Option 設定 Store
type Option func(*Store)

func WithPersister(p TokenPersister) Option {
	return func(s *Store) { s.persist = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store 行程內唯一的 session 狀態
type Store struct {
	auth    Authenticator
	persist TokenPersister
	logger  logging.Logger

	mu      sync.Mutex
	state   State
	version uint64
	changed bool
	gen     uint64
	subs    map[int]func(State)
	nextSub int

	// notifyMu 保護 delivered；比已送出版本舊的通知直接丟棄
	notifyMu  sync.Mutex
	delivered uint64
}

func NewStore(auth Authenticator, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		persist: NewMemoryPersister(""),
		logger:  logging.Discard(),
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot 目前狀態
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe 每次狀態變更後以新狀態呼叫 fn。fn 在釋放狀態鎖之後執行，
// 可以呼叫 Snapshot，但不可同步呼叫 Login、Logout 等會改變狀態的方法
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// setLocked 套用新狀態；呼叫端以 unlockAndNotify 釋放鎖
func (s *Store) setLocked(st State) {
	s.state = st.clone()
	s.version++
	s.changed = true
}

// unlockAndNotify 釋放 s.mu，狀態有變更時再通知訂閱者
func (s *Store) unlockAndNotify() {
	if !s.changed {
		s.mu.Unlock()
		return
	}
	s.changed = false
	st, version := s.state, s.version
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version
	for _, fn := range subs {
		fn(st.clone())
	}
}

// Initialize 以保存的 token 恢復 session；任何失敗都只會變成未登入
func (s *Store) Initialize(ctx context.Context) {
	token, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "load persisted token", "error", err)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if token == "" {
		s.setLocked(State{Phase: Unauthenticated})
		s.unlockAndNotify()
		return
	}
	s.setLocked(State{Phase: Initializing})
	s.unlockAndNotify()

	user, err := s.auth.GetCurrentUser(ctx, token)

	s.mu.Lock()
	defer s.unlockAndNotify()
	if gen != s.gen {
		return
	}
	if err != nil {
		s.logger.Info(ctx, "persisted session rejected", "kind", service.KindOf(err), "error", err)
		if err := s.persist.Remove(ctx); err != nil {
			s.logger.Warn(ctx, "remove persisted token", "error", err)
		}
		s.setLocked(State{Phase: Unauthenticated})
		return
	}
	s.setLocked(State{Phase: Authenticated, Token: token, User: user})
}

// begin 開始一次登入或註冊：Loading=true，清除錯誤
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.unlockAndNotify()
	s.gen++
	st := s.state
	st.Loading = true
	st.Error = ""
	s.setLocked(st)
	return s.gen
}

// finish 套用結果；失敗時不改動 token 與 user
func (s *Store) finish(ctx context.Context, gen uint64, sess *model.Session, err error) error {
	if err == nil && !sess.IsAuthenticated() {
		err = fmt.Errorf("incomplete session returned")
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		if err != nil {
			return err
		}
		// 較新的操作已接手，釋放這個 token
		if cerr := s.auth.ClearToken(ctx, sess.Token); cerr != nil {
			s.logger.Warn(ctx, "release superseded token", "error", cerr)
		}
		return ErrSuperseded
	}
	defer s.unlockAndNotify()

	if err == nil {
		if perr := s.persist.Save(ctx, sess.Token); perr != nil {
			err = fmt.Errorf("persist token: %w", perr)
			if cerr := s.auth.ClearToken(ctx, sess.Token); cerr != nil {
				s.logger.Warn(ctx, "release unpersisted token", "error", cerr)
			}
		}
	}
	if err != nil {
		st := s.state
		st.Loading = false
		st.Error = err.Error()
		if st.Phase != Authenticated {
			st.Phase = Unauthenticated
		}
		s.setLocked(st)
		return err
	}
	s.setLocked(State{Phase: Authenticated, Token: sess.Token, User: sess.User})
	return nil
}

// Login 成功時保存 token；失敗時記錄訊息並回傳錯誤
func (s *Store) Login(ctx context.Context, c Credentials) error {
	gen := s.begin()
	sess, err := s.auth.Login(ctx, c.Email, c.Password)
	return s.finish(ctx, gen, sess, err)
}

// Register 與 Login 相同；是否已核准交給 guard 判斷
func (s *Store) Register(ctx context.Context, r Registration) error {
	gen := s.begin()
	sess, err := s.auth.Register(ctx, r.Profile, r.Password)
	return s.finish(ctx, gen, sess, err)
}

// Logout 無條件清除狀態與保存的 token，可重複呼叫
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	token := s.state.Token
	if err := s.persist.Remove(ctx); err != nil {
		s.logger.Warn(ctx, "remove persisted token", "error", err)
	}
	s.setLocked(State{Phase: Unauthenticated})
	s.unlockAndNotify()

	if token == "" {
		return
	}
	if err := s.auth.ClearToken(ctx, token); err != nil {
		s.logger.Warn(ctx, "clear token", "error", err)
	}
}

// Refresh 重新讀取目前使用者，例如等待核准時。
// 儲存庫無法使用時保留 session 並記錄錯誤，其他失敗視同 token 失效
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	gen := s.gen
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	user, err := s.auth.GetCurrentUser(ctx, token)

	s.mu.Lock()
	defer s.unlockAndNotify()
	if gen != s.gen {
		return ErrSuperseded
	}
	switch {
	case err == nil:
		st := s.state
		st.User = user
		s.setLocked(st)
		return nil
	case errors.Is(err, service.ErrRepositoryUnavailable):
		st := s.state
		st.Error = err.Error()
		s.setLocked(st)
		return err
	}
	if rerr := s.persist.Remove(ctx); rerr != nil {
		s.logger.Warn(ctx, "remove persisted token", "error", rerr)
	}
	s.setLocked(State{Phase: Unauthenticated, Error: err.Error()})
	return err
}

// ClearError 只清除錯誤訊息
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.unlockAndNotify()
	st := s.state
	st.Error = ""
	s.setLocked(st)
}
