package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"auth-dashboard/internal/logging"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/worker"
)

// snapshotUser 快照檔格式；與 model.User 不同，保留密碼雜湊
type snapshotUser struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsApproved   bool      `json:"isApproved"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// snapshotFile 快照檔內容；NextID 是已配發過的最大 ID + 1，刪除使用者後也不回收
type snapshotFile struct {
	NextID int            `json:"next_id"`
	Users  []snapshotUser `json:"users"`
}

// 測試時可替換
var (
	timeNow        = time.Now
	writeFile      = os.WriteFile
	renameFile     = os.Rename
	readFile       = os.ReadFile
	jsonMarshal    = json.Marshal
	jsonUnmarshal  = json.Unmarshal
	createTempFile = os.CreateTemp
)

// MemoryOption 設定 MemoryRepository
type MemoryOption func(*MemoryRepository)

// WithSnapshotFile 每次變更後將整個集合寫入 path，啟動時整份載入
func WithSnapshotFile(path string) MemoryOption {
	return func(r *MemoryRepository) { r.path = path }
}

// WithWriter 透過 worker pool 非同步寫入快照
func WithWriter(p worker.Pool) MemoryOption {
	return func(r *MemoryRepository) { r.writer = p }
}

// WithLogger 設定記錄器
func WithLogger(l logging.Logger) MemoryOption {
	return func(r *MemoryRepository) { r.logger = l }
}

// MemoryRepository 記憶體中的使用者集合，可選擇以 JSON 快照檔持久化
type MemoryRepository struct {
	mu     sync.RWMutex
	users  []model.User
	nextID int
	path   string
	writer worker.Pool
	logger logging.Logger

	// 快照序號：較舊的快照不會覆蓋較新的
	seq       uint64
	writeMu   sync.Mutex
	lastWrite uint64
}

// NewMemoryRepository 若設定了快照檔，整份載入
func NewMemoryRepository(opts ...MemoryOption) (*MemoryRepository, error) {
	r := &MemoryRepository{logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// load 讀入快照；舊格式（純陣列）沒有 next_id，以現存最大 ID 推算
func (r *MemoryRepository) load() error {
	r.nextID = 1
	if r.path == "" {
		return nil
	}
	data, err := readFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load users snapshot: %w", err)
	}
	var file snapshotFile
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = jsonUnmarshal(trimmed, &file.Users)
	} else {
		err = jsonUnmarshal(data, &file)
	}
	if err != nil {
		return fmt.Errorf("decode users snapshot: %w", err)
	}
	users := make([]model.User, 0, len(file.Users))
	for _, row := range file.Users {
		users = append(users, model.User{
			ID:           row.ID,
			Email:        row.Email,
			PasswordHash: row.PasswordHash,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Avatar:       row.Avatar,
			IsApproved:   row.IsApproved,
			IsAdmin:      row.IsAdmin,
			CreatedAt:    row.CreatedAt,
		})
		if row.ID >= file.NextID {
			file.NextID = row.ID + 1
		}
	}
	r.users = users
	r.nextID = max(file.NextID, 1)
	return nil
}

// persistLocked 在持有 r.mu 的情況下擷取快照並交給 writer
func (r *MemoryRepository) persistLocked(ctx context.Context) {
	if r.path == "" {
		return
	}
	rows := make([]snapshotUser, 0, len(r.users))
	for _, u := range r.users {
		rows = append(rows, snapshotUser{
			ID:           u.ID,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Avatar:       u.Avatar,
			IsApproved:   u.IsApproved,
			IsAdmin:      u.IsAdmin,
			CreatedAt:    u.CreatedAt,
		})
	}
	data, err := jsonMarshal(snapshotFile{NextID: r.nextID, Users: rows})
	if err != nil {
		r.logger.Error(ctx, "encode users snapshot", "error", err)
		return
	}
	r.seq++
	seq := r.seq

	write := func() {
		if err := r.writeSnapshot(seq, data); err != nil {
			r.logger.Error(ctx, "save users snapshot", "path", r.path, "error", err)
		}
	}
	if r.writer == nil {
		write()
		return
	}
	if err := r.writer.Submit(write); err != nil {
		// pool 已停止，直接同步寫入
		write()
	}
}

// writeSnapshot 先寫暫存檔再 rename，載入時不會讀到寫一半的檔案
func (r *MemoryRepository) writeSnapshot(seq uint64, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if seq <= r.lastWrite {
		return nil
	}

	tmp, err := createTempFile(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := writeFile(name, data, 0o600); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := renameFile(name, r.path); err != nil {
		_ = os.Remove(name)
		return err
	}
	r.lastWrite = seq
	return nil
}

func (r *MemoryRepository) indexOf(id int) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

// emailTaken 不分大小寫；查詢則是完全比對
func (r *MemoryRepository) emailTaken(email string, exceptID int) bool {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) && r.users[i].ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindByID(_ context.Context, id int) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	u := r.users[i]
	return &u, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, 0) {
		return nil, ErrDuplicateEmail
	}
	created := *u
	created.ID = r.nextID
	r.nextID++
	if created.CreatedAt.IsZero() {
		created.CreatedAt = timeNow()
	}
	r.users = append(r.users, created)
	r.persistLocked(ctx)
	return &created, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int, patch model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, ErrDuplicateEmail
	}
	patch.Apply(&r.users[i])
	r.persistLocked(ctx)
	u := r.users[i]
	return &u, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	r.persistLocked(ctx)
	return nil
}

func (r *MemoryRepository) ListApproved(_ context.Context, page, pageSize int) (model.Page, error) {
	page, pageSize = normalizePage(page, pageSize)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var approved []model.User
	for _, u := range r.users {
		if u.IsApproved {
			approved = append(approved, u)
		}
	}
	res := model.Page{
		Items:      []model.User{},
		Page:       page,
		PerPage:    pageSize,
		Total:      len(approved),
		TotalPages: totalPages(len(approved), pageSize),
	}
	start := (page - 1) * pageSize
	if start >= len(approved) {
		return res, nil
	}
	end := min(start+pageSize, len(approved))
	res.Items = append(res.Items, approved[start:end]...)
	return res, nil
}

func (r *MemoryRepository) ListPending(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pending := []model.User{}
	for _, u := range r.users {
		if !u.IsApproved {
			pending = append(pending, u)
		}
	}
	return pending, nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

// Count 目前使用者數量
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Export 匯出所有使用者（不含密碼雜湊）
func (r *MemoryRepository) Export() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]model.User, len(r.users))
	copy(users, r.users)
	return json.MarshalIndent(users, "", "  ")
}

// Clear 清空集合並刪除快照檔；nextID 不重設，已配發的 ID 在本行程內不會再出現
func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	r.users = nil
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	if r.path == "" {
		return nil
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.lastWrite = seq
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}
