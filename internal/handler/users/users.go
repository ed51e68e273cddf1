// Package users 提供儀表板使用者 CRUD 的 HTTP handler
package users

import (
	"context"
	"net/http"
	"strconv"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/handler"
	"auth-dashboard/internal/model"

	"github.com/labstack/echo/v4"
)

// UserManager 是 handler 需要的 service.UserService 方法
type UserManager interface {
	List(ctx context.Context, page int) (model.Page, error)
	Get(ctx context.Context, id int) (*model.User, error)
	Create(ctx context.Context, p model.Profile) (*model.User, error)
	Update(ctx context.Context, id int, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id int) error
}

// ListUsersHandler 已核准使用者分頁
// @Summary     List approved users
// @Tags        users
// @Produce     json
// @Param       page query    int false "頁碼，從 1 開始"
// @Success     200  {object} dto.UserPageResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     403  {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /users [get]
func ListUsersHandler(svc UserManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		page := 1
		if raw := c.QueryParam("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p < 1 {
				return c.JSON(http.StatusBadRequest, dto.ValidationError("invalid page"))
			}
			page = p
		}
		res, err := svc.List(c.Request().Context(), page)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserPageResponse(res))
	}
}

// GetUserHandler 依 ID 取得使用者
// @Summary     Get user by ID
// @Tags        users
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} dto.UserResponse
// @Failure     400 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /users/{id} [get]
func GetUserHandler(svc UserManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := handler.ParamID(c)
		if !ok {
			return err
		}
		u, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(u))
	}
}

// CreateUserHandler 管理員建立使用者（直接核准、無密碼）
// @Summary     Create a user
// @Description 管理員建立的使用者直接核准；未提供頭像時隨機挑選
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     dto.CreateUserRequest true "使用者資料"
// @Success     201  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /users [post]
func CreateUserHandler(svc UserManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.CreateUserRequest
		if ok, err := handler.BindValid(c, &req); !ok {
			return err
		}
		u, err := svc.Create(c.Request().Context(), req.Profile())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.NewUserResponse(u))
	}
}

// UpdateUserHandler 部分更新；未提供的欄位不變
// @Summary     Update a user
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       id   path     int                   true "使用者 ID"
// @Param       body body     dto.UpdateUserRequest true "更新欄位"
// @Success     200  {object} dto.UserResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /users/{id} [put]
func UpdateUserHandler(svc UserManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := handler.ParamID(c)
		if !ok {
			return err
		}
		var req dto.UpdateUserRequest
		if ok, err := handler.BindValid(c, &req); !ok {
			return err
		}
		u, err := svc.Update(c.Request().Context(), id, req.Patch())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(u))
	}
}

// DeleteUserHandler 刪除使用者
// @Summary     Delete a user
// @Tags        users
// @Param       id  path int true "使用者 ID"
// @Success     204
// @Failure     400 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /users/{id} [delete]
func DeleteUserHandler(svc UserManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := handler.ParamID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
