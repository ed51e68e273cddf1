// Package approvals 提供管理員核准流程的 HTTP handler
package approvals

import (
	"context"
	"net/http"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/handler"
	"auth-dashboard/internal/model"

	"github.com/labstack/echo/v4"
)

// Approver 是 handler 需要的 service.UserService 方法
type Approver interface {
	Pending(ctx context.Context) ([]model.User, error)
	Approve(ctx context.Context, id int) (*model.User, error)
	Reject(ctx context.Context, id int) error
}

// PendingHandler 待核准使用者
// @Summary     List pending users
// @Tags        approvals
// @Produce     json
// @Success     200 {array}  dto.UserResponse
// @Failure     403 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /approvals [get]
func PendingHandler(svc Approver) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := svc.Pending(c.Request().Context())
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserList(users))
	}
}

// ApproveHandler 核准使用者；既有 token 下一次查詢即看到 isApproved=true
// @Summary     Approve a user
// @Tags        approvals
// @Produce     json
// @Param       id  path     int true "使用者 ID"
// @Success     200 {object} dto.UserResponse
// @Failure     404 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /approvals/{id}/approve [post]
func ApproveHandler(svc Approver) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := handler.ParamID(c)
		if !ok {
			return err
		}
		u, err := svc.Approve(c.Request().Context(), id)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(u))
	}
}

// RejectHandler 拒絕即刪除
// @Summary     Reject a user
// @Tags        approvals
// @Param       id  path int true "使用者 ID"
// @Success     204
// @Failure     404 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /approvals/{id}/reject [post]
func RejectHandler(svc Approver) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok, err := handler.ParamID(c)
		if !ok {
			return err
		}
		if err := svc.Reject(c.Request().Context(), id); err != nil {
			return handler.WriteError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
