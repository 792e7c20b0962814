package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はセッショントークンのデフォルト有効期間（30日）。
const DefaultTokenTTL = 30 * 24 * time.Hour

// ErrInvalidToken はトークンの署名不正、期限切れ、形式不正を示す。
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims はセッショントークンのペイロード。
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenSigner はHS256で署名したステートレスなセッショントークンを発行・検証する。
// サーバー側には何も保存しない。
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner はTokenSignerを生成する。ttlが0以下の場合はDefaultTokenTTLを使う。
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate はユーザーIDを含むトークンを発行する。
func (s *TokenSigner) Generate(userID int64) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証しペイロードを返す。
// 署名不正、期限切れ、HS256以外のアルゴリズムはErrInvalidTokenとなり、ペイロードは返さない。
func (s *TokenSigner) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	return claims, nil
}

// TTL はトークンの有効期間を返す。
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}
