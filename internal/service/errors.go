package service

import "errors"

// Kind 錯誤分類，也是 HTTP 回應中的 code
type Kind string

const (
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindPendingApproval       Kind = "pending_approval"
	KindDuplicateEmail        Kind = "duplicate_email"
	KindInvalidToken          Kind = "invalid_token"
	KindTokenExpired          Kind = "token_expired"
	KindUserNotFound          Kind = "user_not_found"
	KindRepositoryUnavailable Kind = "repository_unavailable"
	KindPasswordTooLong       Kind = "password_too_long"
)

// AuthError 帶分類的錯誤；errors.Is 以 Kind 比對
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &AuthError{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
	ErrPendingApproval    = &AuthError{
		Kind:    KindPendingApproval,
		Message: "Your account is pending admin approval. Please wait for approval before logging in.",
	}
	ErrDuplicateEmail        = &AuthError{Kind: KindDuplicateEmail, Message: "User with this email already exists"}
	ErrInvalidToken          = &AuthError{Kind: KindInvalidToken, Message: "Invalid token"}
	ErrTokenExpired          = &AuthError{Kind: KindTokenExpired, Message: "Token expired"}
	ErrUserNotFound          = &AuthError{Kind: KindUserNotFound, Message: "User not found"}
	ErrRepositoryUnavailable = &AuthError{Kind: KindRepositoryUnavailable, Message: "User repository unavailable"}
	ErrPasswordTooLong       = &AuthError{Kind: KindPasswordTooLong, Message: "Password must be no more than 72 bytes"}
)

var sentinels = map[Kind]*AuthError{
	KindInvalidCredentials:    ErrInvalidCredentials,
	KindPendingApproval:       ErrPendingApproval,
	KindDuplicateEmail:        ErrDuplicateEmail,
	KindInvalidToken:          ErrInvalidToken,
	KindTokenExpired:          ErrTokenExpired,
	KindUserNotFound:          ErrUserNotFound,
	KindRepositoryUnavailable: ErrRepositoryUnavailable,
	KindPasswordTooLong:       ErrPasswordTooLong,
}

// unavailable 包裝 repository / token store 失敗
func unavailable(err error) error {
	return &AuthError{Kind: KindRepositoryUnavailable, Message: ErrRepositoryUnavailable.Message, Err: err}
}

// KindOf 回傳 err 的分類；非 AuthError 回傳空字串
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// FromKind 依 code 重建錯誤，message 為空時使用預設訊息
func FromKind(kind Kind, message string) error {
	base, ok := sentinels[kind]
	if !ok {
		return nil
	}
	if message == "" || message == base.Message {
		return base
	}
	return &AuthError{Kind: kind, Message: message}
}
