// File: internal/handler/auth/login.go
package auth

import (
	"net/http"

	"auth-dashboard/internal/dto"
	"auth-dashboard/internal/handler"

	"github.com/labstack/echo/v4"
)

// LoginHandler 使用 Email/Password 驗證並回傳 session
// @Summary     登入使用者
// @Description 帳密相符且已核准才回傳 token；未知 email 與錯誤密碼回傳相同錯誤
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     dto.LoginRequest true "登入資料"
// @Success     200  {object} dto.SessionResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     403  {object} dto.HTTPError
// @Failure     503  {object} dto.HTTPError
// @Router      /auth/login [post]
func LoginHandler(auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req dto.LoginRequest
		if ok, err := handler.BindValid(c, &req); !ok {
			return err
		}

		sess, err := auth.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return handler.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, dto.SessionResponse{Token: sess.Token, User: dto.NewUserResponse(sess.User)})
	}
}
