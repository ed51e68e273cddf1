// File: internal/dto/user.go
package dto

import (
	"time"

	"auth-dashboard/internal/model"
)

// swagger:model dto.UserResponse
type UserResponse struct {
	ID         int       `json:"id" example:"1"`
	Email      string    `json:"email" example:"test@example.com"`
	FirstName  string    `json:"first_name" example:"John"`
	LastName   string    `json:"last_name" example:"Doe"`
	Avatar     string    `json:"avatar" example:"https://reqres.in/img/faces/1-image.jpg"`
	IsApproved bool      `json:"isApproved" example:"true"`
	IsAdmin    bool      `json:"isAdmin" example:"false"`
	CreatedAt  time.Time `json:"createdAt" example:"2024-01-01T00:00:00Z"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Avatar:     u.Avatar,
		IsApproved: u.IsApproved,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
	}
}

// ToUser 反向轉換，供 API client 使用
func (r UserResponse) ToUser() *model.User {
	return &model.User{
		ID:         r.ID,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Avatar:     r.Avatar,
		IsApproved: r.IsApproved,
		IsAdmin:    r.IsAdmin,
		CreatedAt:  r.CreatedAt,
	}
}

func NewUserList(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// swagger:model dto.UserPageResponse
type UserPageResponse struct {
	Data       []UserResponse `json:"data"`
	Page       int            `json:"page" example:"1"`
	PerPage    int            `json:"per_page" example:"6"`
	Total      int            `json:"total" example:"12"`
	TotalPages int            `json:"total_pages" example:"2"`
}

func NewUserPageResponse(p model.Page) UserPageResponse {
	return UserPageResponse{
		Data:       NewUserList(p.Items),
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// swagger:model dto.CreateUserRequest
type CreateUserRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email" example:"made@example.com"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=50" example:"Grace"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=50" example:"Hopper"`
	Avatar    string `json:"avatar" form:"avatar" validate:"omitempty,url" example:"https://reqres.in/img/faces/3-image.jpg"`
}

func (r CreateUserRequest) Profile() model.Profile {
	return model.Profile{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName, Avatar: r.Avatar}
}

// swagger:model dto.UpdateUserRequest
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email" example:"renamed@example.com"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=50" example:"Grace"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=50" example:"Hopper"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url" example:"https://reqres.in/img/faces/4-image.jpg"`
	IsAdmin   *bool   `json:"isAdmin,omitempty" example:"false"`
}

func (r UpdateUserRequest) Patch() model.UserPatch {
	return model.UserPatch{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Avatar:    r.Avatar,
		IsAdmin:   r.IsAdmin,
	}
}
