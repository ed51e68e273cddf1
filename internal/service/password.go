// File: internal/service/password.go
package service

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bcrypt 只接受 72 bytes 以內的密碼
const MaxPasswordBytes = 72

// 測試時可替換
var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
)

// PasswordHasher 密碼雜湊與比對
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher 以 bcrypt 實作 PasswordHasher；Cost 為 0 時使用 bcrypt.DefaultCost
type BcryptHasher struct {
	Cost int
}

// Hash 接收明文密碼，回傳 bcrypt 哈希字串
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Compare 比對明文密碼與 bcrypt 哈希，成功回傳 nil
// 空的 hash（管理員建立、未設密碼的帳號）一律比對失敗
func (h BcryptHasher) Compare(hash, password string) error {
	if hash == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
}
