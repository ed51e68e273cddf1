// Package client 呼叫 auth-dashboard HTTP API；實作 session.Authenticator，
// 並把 dto.HTTPError 的 code 還原成對應的 service 錯誤
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/service"
)

// ErrUnexpectedStatus 伺服器回傳無法分類的錯誤
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client HTTP API 客戶端
type Client struct {
	base string
	http *http.Client
}

// New baseURL 例如 http://localhost:8080/api
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// do 送出請求；out 為 nil 時忽略回應內容
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// 連不到伺服器視同儲存庫無法使用，session 不會因此被清除
		return &service.AuthError{Kind: service.KindRepositoryUnavailable, Message: service.ErrRepositoryUnavailable.Message, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError 依 code 還原分類錯誤；validation 與未知 code 保留訊息
func decodeError(resp *http.Response) error {
	var he dto.HTTPError
	_ = json.NewDecoder(resp.Body).Decode(&he)
	if err := service.FromKind(service.Kind(he.Code), he.Message); err != nil {
		return err
	}
	if he.Message == "" {
		he.Message = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, he.Message)
}

func sessionOf(r dto.SessionResponse) *model.Session {
	return &model.Session{Token: r.Token, User: r.User.ToUser()}
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var out dto.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return sessionOf(out), nil
}

func (c *Client) Register(ctx context.Context, p model.Profile, password string) (*model.Session, error) {
	in := dto.RegisterRequest{Email: p.Email, Password: password, FirstName: p.FirstName, LastName: p.LastName}
	var out dto.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return sessionOf(out), nil
}

func (c *Client) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, service.ErrInvalidToken
	}
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return out.ToUser(), nil
}

// ClearToken 伺服器端已不認得的 token 視為已清除
func (c *Client) ClearToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenExpired) {
		return nil
	}
	return err
}

// Users 已核准使用者分頁
func (c *Client) Users(ctx context.Context, token string, page int) (model.Page, error) {
	var out dto.UserPageResponse
	if err := c.do(ctx, http.MethodGet, "/users?page="+strconv.Itoa(page), token, nil, &out); err != nil {
		return model.Page{}, err
	}
	items := make([]model.User, 0, len(out.Data))
	for _, u := range out.Data {
		items = append(items, *u.ToUser())
	}
	return model.Page{Items: items, Page: out.Page, PerPage: out.PerPage, Total: out.Total, TotalPages: out.TotalPages}, nil
}

func (c *Client) User(ctx context.Context, token string, id int) (*model.User, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.ToUser(), nil
}

func (c *Client) CreateUser(ctx context.Context, token string, p model.Profile) (*model.User, error) {
	in := dto.CreateUserRequest{Email: p.Email, FirstName: p.FirstName, LastName: p.LastName, Avatar: p.Avatar}
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/users", token, in, &out); err != nil {
		return nil, err
	}
	return out.ToUser(), nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int, patch model.UserPatch) (*model.User, error) {
	in := dto.UpdateUserRequest{
		Email:     patch.Email,
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		Avatar:    patch.Avatar,
		IsAdmin:   patch.IsAdmin,
	}
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), token, in, &out); err != nil {
		return nil, err
	}
	return out.ToUser(), nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), token, nil, nil)
}

// Pending 待核准使用者（管理員）
func (c *Client) Pending(ctx context.Context, token string) ([]model.User, error) {
	var out []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/approvals", token, nil, &out); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(out))
	for _, u := range out {
		users = append(users, *u.ToUser())
	}
	return users, nil
}

func (c *Client) Approve(ctx context.Context, token string, id int) (*model.User, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/approvals/"+strconv.Itoa(id)+"/approve", token, nil, &out); err != nil {
		return nil, err
	}
	return out.ToUser(), nil
}

func (c *Client) Reject(ctx context.Context, token string, id int) error {
	return c.do(ctx, http.MethodPost, "/approvals/"+strconv.Itoa(id)+"/reject", token, nil, nil)
}

// Ping 伺服器健康檢查
func (c *Client) Ping(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/ping", token, nil, nil)
}
