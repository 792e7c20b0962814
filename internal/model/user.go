// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// email、name、avatar_url はIdPから取得できない場合があるためnilを許容する。
type User struct {
	ID        int64
	Email     *string
	Name      *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthAccount は外部IdPアカウントとユーザーの紐付け情報を表す。
// (provider, provider_account_id) で一意。
type AuthAccount struct {
	ID                int64
	Provider          string
	ProviderAccountID string
	UserID            int64

	// IdPから受け取ったクレデンシャル。初回登録時のみ保存する。
	AccessToken  *string
	RefreshToken *string
	IDToken      *string
	TokenType    *string
	Scope        *string
	ExpiresAt    *int64 // UNIX秒

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthAccountWithUser は紐付け先ユーザーを含む認証アカウント。
type AuthAccountWithUser struct {
	AuthAccount
	User User
}

// ExternalIdentity は認可コード交換で得られたIdP側のユーザー情報。
// 永続化はせず、登録処理に受け渡すだけの一時的な値。
type ExternalIdentity struct {
	Provider    string
	ID          string
	Email       string
	Name        string
	AvatarURL   string
	Credentials OAuthCredentials
}

// OAuthCredentials はトークンエンドポイントが返したクレデンシャル。
type OAuthCredentials struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	Scope        string
	Expiry       time.Time
}

// UserRegistration はユーザー新規登録で一括作成するレコード群の入力値。
type UserRegistration struct {
	User          User
	AuthAccount   AuthAccount
	UserCharacter UserCharacter
}

// StringPtr は空文字列をnilとして扱うポインタを返す。
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
