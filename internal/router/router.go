// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"auth-dashboard/internal/cache"
	"auth-dashboard/internal/handler"
	"auth-dashboard/internal/handler/approvals"
	"auth-dashboard/internal/handler/auth"
	"auth-dashboard/internal/handler/users"
	"auth-dashboard/internal/middleware"
)

// Authenticator 登入流程與 token 驗證；service.AuthService 同時滿足兩者
type Authenticator interface {
	auth.Authenticator
	middleware.UserResolver
}

// UserService 儀表板 CRUD 與核准流程
type UserService interface {
	users.UserManager
	approvals.Approver
}

// Deps 路由需要的服務；Cache 可為 nil
type Deps struct {
	Auth  Authenticator
	Users UserService
	Repo  handler.Pinger
	Cache cache.Cache
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	api := e.Group("/api")

	requireAuth := middleware.RequireAuth(d.Auth)
	requireApproved := middleware.RequireApproved(d.Auth)
	requireAdmin := middleware.RequireAdmin(d.Auth)

	// 健康檢查（需登入）
	api.GET("/ping", handler.PingHandler(d.Repo, d.Cache), requireAuth)

	// 登入、註冊、目前使用者
	api.POST("/auth/login", auth.LoginHandler(d.Auth))
	api.POST("/auth/register", auth.RegisterHandler(d.Auth))
	api.GET("/auth/me", auth.MeHandler(), requireAuth)
	api.POST("/auth/logout", auth.LogoutHandler(d.Auth), requireAuth)

	// 已核准使用者可瀏覽，管理員可修改
	apiUsers := api.Group("/users")
	apiUsers.GET("", users.ListUsersHandler(d.Users), requireApproved)
	apiUsers.GET("/:id", users.GetUserHandler(d.Users), requireApproved)
	apiUsers.POST("", users.CreateUserHandler(d.Users), requireAdmin)
	apiUsers.PUT("/:id", users.UpdateUserHandler(d.Users), requireAdmin)
	apiUsers.DELETE("/:id", users.DeleteUserHandler(d.Users), requireAdmin)

	// 管理員核准流程
	apiApprovals := api.Group("/approvals", requireAdmin)
	apiApprovals.GET("", approvals.PendingHandler(d.Users))
	apiApprovals.POST("/:id/approve", approvals.ApproveHandler(d.Users))
	apiApprovals.POST("/:id/reject", approvals.RejectHandler(d.Users))
}
