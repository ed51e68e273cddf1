// File: internal/handler/ping.go
package handler

import (
	"context"
	"net/http"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/dto"

	"github.com/labstack/echo/v4"
)

// Pinger 使用者儲存庫的健康檢查
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingResponse 健康檢查回應模型
// swagger:model PingResponse
type PingResponse struct {
	// 回應訊息
	Message string `json:"message" example:"pong"`
}

// PingHandler 健康檢查（需通過認證）；cch 為 nil 時略過快取檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查使用者儲存庫與快取是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     401 {object} dto.HTTPError
// @Failure     503 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /ping [get]
func PingHandler(repo Pinger, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := repo.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "repository unhealthy", Code: "repository_unavailable"})
		}
		if cch != nil {
			if err := cch.Ping(ctx).Err(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "cache unhealthy", Code: "repository_unavailable"})
			}
		}
		return c.JSON(http.StatusOK, PingResponse{Message: "pong"})
	}
}
