// File: internal/handler/auth/session.go
package auth

import (
	"net/http"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/handler"
	"auth-dashboard/internal/middleware"

	"github.com/labstack/echo/v4"
)

// MeHandler 回傳 token 對應的目前使用者（含未核准者）
// @Summary     目前使用者
// @Tags        auth
// @Produce     json
// @Success     200 {object} dto.UserResponse
// @Failure     401 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /auth/me [get]
func MeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		u := middleware.CurrentUser(c)
		if u == nil {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "unauthorized", Code: "invalid_token"})
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(u))
	}
}

// LogoutHandler 移除 token 對應
// @Summary     登出
// @Tags        auth
// @Success     204
// @Failure     401 {object} dto.HTTPError
// @Failure     503 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /auth/logout [post]
func LogoutHandler(auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := auth.ClearToken(c.Request().Context(), middleware.Token(c)); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
