package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// TokenKey 持久化 token 使用的鍵
const TokenKey = "token"

// TokenPersister 跨行程保存單一 token
type TokenPersister interface {
	// Load 沒有 token 時回傳 ""
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// MemoryPersister 只存在記憶體中
type MemoryPersister struct {
	mu    sync.Mutex
	token string
}

func NewMemoryPersister(token string) *MemoryPersister {
	return &MemoryPersister{token: token}
}

func (m *MemoryPersister) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryPersister) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Remove(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

const createMetadata = `
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`

// SQLitePersister 將 token 存在 SQLite metadata 表
type SQLitePersister struct {
	db *sql.DB
}

// OpenSQLitePersister 開啟 dsn 並確保 metadata 表存在
func OpenSQLitePersister(ctx context.Context, dsn string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}
	p, err := NewSQLitePersister(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func NewSQLitePersister(ctx context.Context, db *sql.DB) (*SQLitePersister, error) {
	if _, err := db.ExecContext(ctx, createMetadata); err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Load(ctx context.Context) (string, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, TokenKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", TokenKey, err)
	}
	return string(value), nil
}

func (p *SQLitePersister) Save(ctx context.Context, token string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, TokenKey, []byte(token))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", TokenKey, err)
	}
	return nil
}

func (p *SQLitePersister) Remove(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, TokenKey)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", TokenKey, err)
	}
	return nil
}

func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
