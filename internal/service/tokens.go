package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 測試時可替換
var (
	timeNow         = time.Now
	newTokenID      = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims
)

var errTokenExpired = errors.New("token expired")

// CustomClaims 定義 JWT 負載內容
type CustomClaims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}

// JWTIssuer 簽發與解析 HS256 token；token 對呼叫端而言是不透明字串
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTIssuer ttl <= 0 表示不設過期
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not set")
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// TTL token 有效期
func (j *JWTIssuer) TTL() time.Duration { return j.ttl }

// Issue 依據使用者 ID 產生 JWT，每次呼叫帶不同的 jti
func (j *JWTIssuer) Issue(userID int) (string, error) {
	now := timeNow()
	claims := CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       newTokenID(),
			Subject:  strconv.Itoa(userID),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Verify 驗證並解析 JWT；過期時回傳 errTokenExpired
func (j *JWTIssuer) Verify(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := parseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(timeNow))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errTokenExpired
	}
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
