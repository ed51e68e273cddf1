// File: internal/model/user.go
package model

import "time"

// User 儀表板使用者紀錄
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Avatar       string    `db:"avatar" json:"avatar"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsApproved   bool      `db:"is_approved" json:"isApproved"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Profile 註冊或管理員建立使用者時的輸入
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

// UserPatch 部分更新；nil 欄位表示不變
type UserPatch struct {
	Email      *string `json:"email,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	IsApproved *bool   `json:"isApproved,omitempty"`
	IsAdmin    *bool   `json:"isAdmin,omitempty"`
}

// Apply copies every non-nil patch field onto u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.IsApproved != nil {
		u.IsApproved = *p.IsApproved
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}

// Page 已核准使用者分頁結果
type Page struct {
	Items      []User `json:"data"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}
