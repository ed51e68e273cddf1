// Package guard decides whether a protected view may render for the current
// session state. It never errors: every outcome is a Decision.
package guard

import (
	"auth-dashboard/internal/model"
	"auth-dashboard/internal/policy"
)

// LoginPath 未登入或未核准時導向的位置
const LoginPath = "/login"

// View 是 guard 從 session 需要的能力；session.State 滿足此介面
type View interface {
	IsInitializing() bool
	IsAuthenticated() bool
	CurrentUser() *model.User
}

// Action 准入結果
type Action int

const (
	ActionRender Action = iota
	ActionLoading
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionLoading:
		return "loading"
	case ActionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decision 對 Redirect 而言 To 是目的地、From 是原本要求的位置，
// Reason 只在帳號待核准或權限不足時設定
type Decision struct {
	Action Action
	To     string
	From   string
	Reason string
}

// ForbiddenReason 非管理員進入管理頁面時的訊息
const ForbiddenReason = "Administrator access is required to view this page."

// Evaluate 依序檢查：初始化中、未登入、未核准
func Evaluate(v View, requested string) Decision {
	return evaluate(v, requested, policy.CheckApproved)
}

// EvaluateAdmin 額外要求管理員
func EvaluateAdmin(v View, requested string) Decision {
	return evaluate(v, requested, policy.CheckAdmin)
}

func evaluate(v View, requested string, check func(*model.User) policy.Verdict) Decision {
	if v.IsInitializing() {
		return Decision{Action: ActionLoading}
	}
	if !v.IsAuthenticated() {
		return Decision{Action: ActionRedirect, To: LoginPath, From: requested}
	}
	switch check(v.CurrentUser()) {
	case policy.Allowed:
		return Decision{Action: ActionRender}
	case policy.PendingApproval:
		return Decision{Action: ActionRedirect, To: LoginPath, From: requested, Reason: policy.PendingApprovalReason}
	case policy.Forbidden:
		return Decision{Action: ActionRedirect, To: "/", From: requested, Reason: ForbiddenReason}
	}
	return Decision{Action: ActionRedirect, To: LoginPath, From: requested}
}
