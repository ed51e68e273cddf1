package dto

import (
	"errors"
	"net/http"

	"auth-dashboard/internal/service"
)

// CodeValidation 表單或參數驗證失敗
const CodeValidation = "validation"

// HTTPError 所有錯誤回應的格式；Code 為錯誤分類，用戶端據此還原錯誤種類
// swagger:model dto.HTTPError
type HTTPError struct {
	Message string `json:"message" example:"Invalid email or password"`
	Code    string `json:"code,omitempty" example:"invalid_credentials"`
}

var kindStatus = map[service.Kind]int{
	service.KindInvalidCredentials:    http.StatusUnauthorized,
	service.KindInvalidToken:          http.StatusUnauthorized,
	service.KindTokenExpired:          http.StatusUnauthorized,
	service.KindPendingApproval:       http.StatusForbidden,
	service.KindDuplicateEmail:        http.StatusConflict,
	service.KindPasswordTooLong:       http.StatusBadRequest,
	service.KindUserNotFound:          http.StatusNotFound,
	service.KindRepositoryUnavailable: http.StatusServiceUnavailable,
}

// ErrorResponse 將分類錯誤轉成 HTTP 狀態碼與回應；未分類錯誤為 500
func ErrorResponse(err error) (int, HTTPError) {
	var ae *service.AuthError
	if errors.As(err, &ae) {
		if status, ok := kindStatus[ae.Kind]; ok {
			return status, HTTPError{Message: ae.Error(), Code: string(ae.Kind)}
		}
	}
	return http.StatusInternalServerError, HTTPError{Message: "internal server error"}
}

// ValidationError 400 回應
func ValidationError(message string) HTTPError {
	return HTTPError{Message: message, Code: CodeValidation}
}
