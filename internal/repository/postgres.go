package repository

import (
	"context"
	"errors"
	"fmt"

	"auth-dashboard/internal/database"
	"auth-dashboard/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, password_hash, first_name, last_name, avatar, is_approved, is_admin, created_at`

// uniqueViolation PostgreSQL unique_violation SQLSTATE
const uniqueViolation = "23505"

// PostgresRepository 以 PostgreSQL users 表實作 UserRepository
type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&u.IsApproved,
		&u.IsAdmin,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

// mapErr 將 driver 錯誤轉成 repository 錯誤
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("FindByEmail", err)
	}
	return u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("FindByID", err)
	}
	return u, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, u *model.User) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, avatar, is_approved, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Avatar,
		u.IsApproved,
		u.IsAdmin,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, mapErr("Insert", err)
	}
	return created, nil
}

// Update nil 欄位以 COALESCE 保留原值
func (r *PostgresRepository) Update(ctx context.Context, id int, patch model.UserPatch) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users SET
		     email       = COALESCE($1, email),
		     first_name  = COALESCE($2, first_name),
		     last_name   = COALESCE($3, last_name),
		     avatar      = COALESCE($4, avatar),
		     is_approved = COALESCE($5, is_approved),
		     is_admin    = COALESCE($6, is_admin)
		 WHERE id = $7
		 RETURNING `+userColumns,
		patch.Email,
		patch.FirstName,
		patch.LastName,
		patch.Avatar,
		patch.IsApproved,
		patch.IsAdmin,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("Update", err)
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListApproved(ctx context.Context, page, pageSize int) (model.Page, error) {
	page, pageSize = normalizePage(page, pageSize)
	res := model.Page{Items: []model.User{}, Page: page, PerPage: pageSize}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE is_approved`,
	).Scan(&res.Total); err != nil {
		return model.Page{}, fmt.Errorf("ListApproved: %w", err)
	}
	res.TotalPages = totalPages(res.Total, pageSize)

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_approved
		 ORDER BY id LIMIT $1 OFFSET $2`,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		return model.Page{}, fmt.Errorf("ListApproved: %w", err)
	}
	items, err := collectUsers(rows)
	if err != nil {
		return model.Page{}, fmt.Errorf("ListApproved: %w", err)
	}
	res.Items = append(res.Items, items...)
	return res, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE NOT is_approved ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	pending, err := collectUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	return pending, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
