package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTokenNotFound token 不存在或已過期
var ErrTokenNotFound = errors.New("token not found")

// TokenStore token → 使用者 ID 的對應，是判斷 token 是否有效的唯一依據
type TokenStore interface {
	Put(ctx context.Context, token string, userID int, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (int, error)
	// Remove 對不存在的 token 也回傳 nil
	Remove(ctx context.Context, token string) error
}

// sweepInterval Put 最多每隔這段時間清一次過期項目
const sweepInterval = time.Minute

// 測試時可替換
var timeNow = time.Now

type memoryEntry struct {
	userID  int
	expires time.Time
}

// MemoryTokens 行程內的 TokenStore
type MemoryTokens struct {
	mu        sync.Mutex
	tokens    map[string]memoryEntry
	lastSweep time.Time
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{tokens: make(map[string]memoryEntry)}
}

// Put 同時清除過期項目，未登出就被丟棄的 token 不會一直留在 map 裡
func (m *MemoryTokens) Put(_ context.Context, token string, userID int, ttl time.Duration) error {
	now := timeNow()
	e := memoryEntry{userID: userID}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	m.tokens[token] = e
	return nil
}

// Sweep 立即清除所有過期項目，回傳清除數量
func (m *MemoryTokens) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(timeNow())
}

func (m *MemoryTokens) sweepLocked(now time.Time) int {
	m.lastSweep = now
	removed := 0
	for token, e := range m.tokens {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.tokens, token)
			removed++
		}
	}
	return removed
}

func (m *MemoryTokens) Lookup(_ context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tokens[token]
	if !ok {
		return 0, ErrTokenNotFound
	}
	if !e.expires.IsZero() && !timeNow().Before(e.expires) {
		delete(m.tokens, token)
		return 0, ErrTokenNotFound
	}
	return e.userID, nil
}

func (m *MemoryTokens) Remove(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
	return nil
}

// Len 目前保存的 token 數量（可能含上次清除後才過期的項目）
func (m *MemoryTokens) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
