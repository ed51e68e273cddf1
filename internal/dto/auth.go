// File: internal/dto/auth.go
package dto

// swagger:model dto.LoginRequest
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" form:"password" validate:"required" example:"password123"`
}

// swagger:model dto.RegisterRequest
type RegisterRequest struct {
	Email           string `json:"email" form:"email" validate:"required,email" example:"new@example.com"`
	Password        string `json:"password" form:"password" validate:"required,min=6,max=72" example:"secret1"`
	ConfirmPassword string `json:"confirmPassword,omitempty" form:"confirmPassword" validate:"omitempty,eqfield=Password" example:"secret1"`
	FirstName       string `json:"first_name" form:"first_name" validate:"required,max=50" example:"Ada"`
	LastName        string `json:"last_name" form:"last_name" validate:"required,max=50" example:"Lovelace"`
}

// swagger:model dto.SessionResponse
type SessionResponse struct {
	Token string       `json:"token" example:"eyJhbGciOi..."`
	User  UserResponse `json:"user"`
}
