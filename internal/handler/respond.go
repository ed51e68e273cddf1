// File: internal/handler/respond.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"auth-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

// WriteError 將分類錯誤寫成 dto.HTTPError
func WriteError(c echo.Context, err error) error {
	status, body := dto.ErrorResponse(err)
	return c.JSON(status, body)
}

// BindValid 先 Bind 再 Validate；失敗時已寫出 400，回傳 false
func BindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.ValidationError(fmt.Sprintf("無效的請求資料: %v", err)))
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
	}
	return true, nil
}

// ParamID 解析路徑參數 :id；失敗時已寫出 400，回傳 false
func ParamID(c echo.Context) (int, bool, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false, c.JSON(http.StatusBadRequest, dto.ValidationError("invalid user id"))
	}
	return id, true, nil
}
