// File: internal/handler/auth/register.go
package auth

import (
	"net/http"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/handler"
	"auth-dashboard/internal/model"

	"github.com/labstack/echo/v4"
)

// RegisterHandler 建立待核准帳號並回傳 session
// @Summary     註冊
// @Description 新帳號 isApproved=false，需管理員核准後才能進入儀表板
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     dto.RegisterRequest true "註冊資料"
// @Success     201  {object} dto.SessionResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Failure     503  {object} dto.HTTPError
// @Router      /auth/register [post]
func RegisterHandler(auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.RegisterRequest
		if ok, err := handler.BindValid(c, &req); !ok {
			return err
		}

		profile := model.Profile{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}
		sess, err := auth.Register(c.Request().Context(), profile, req.Password)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusCreated, dto.SessionResponse{Token: sess.Token, User: dto.NewUserResponse(sess.User)})
	}
}
