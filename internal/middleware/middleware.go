package middleware

import (
	"context"
	"net/http"
	"strings"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/policy"
	"auth-dashboard/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// UserResolver 以 token 取得目前使用者；service.AuthService 滿足此介面
type UserResolver interface {
	GetCurrentUser(ctx context.Context, token string) (*model.User, error)
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", service.ErrInvalidToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", service.ErrInvalidToken
	}
	return parts[1], nil
}

func fail(c echo.Context, err error) error {
	status, body := dto.ErrorResponse(err)
	return c.JSON(status, body)
}

// RequireAuth 驗證 bearer token 並將使用者放入 context
func RequireAuth(r UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return fail(c, err)
			}
			user, err := r.GetCurrentUser(c.Request().Context(), token)
			if err != nil {
				return fail(c, err)
			}
			c.Set(ContextTokenKey, token)
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

func withPolicy(r UserResolver, check func(*model.User) policy.Verdict) echo.MiddlewareFunc {
	auth := RequireAuth(r)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(func(c echo.Context) error {
			switch check(CurrentUser(c)) {
			case policy.Allowed:
				return next(c)
			case policy.PendingApproval:
				return c.JSON(http.StatusForbidden, dto.HTTPError{
					Message: policy.PendingApprovalReason,
					Code:    string(service.KindPendingApproval),
				})
			case policy.Forbidden:
				return c.JSON(http.StatusForbidden, dto.HTTPError{Message: "admin privileges required", Code: "forbidden"})
			}
			return fail(c, service.ErrInvalidToken)
		})
	}
}

// RequireApproved 已登入且已核准
func RequireApproved(r UserResolver) echo.MiddlewareFunc {
	return withPolicy(r, policy.CheckApproved)
}

// RequireAdmin 已核准的管理員
func RequireAdmin(r UserResolver) echo.MiddlewareFunc {
	return withPolicy(r, policy.CheckAdmin)
}

// CurrentUser 取得 RequireAuth 放入的使用者
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}

// Token 取得 RequireAuth 驗證過的 token
func Token(c echo.Context) string {
	t, _ := c.Get(ContextTokenKey).(string)
	return t
}
