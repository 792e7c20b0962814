// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/aitrainer/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthAccountRepository は外部IdP紐付け情報の永続化インターフェース。
type AuthAccountRepository interface {
	// FindByProvider はproviderとprovider_account_idで認証アカウントを紐付け先ユーザーごと検索する。
	// 見つからない場合はnilを返す。
	FindByProvider(ctx context.Context, provider, providerAccountID string) (*model.AuthAccountWithUser, error)
}

// RegistrationRepository はユーザー新規登録の永続化インターフェース。
type RegistrationRepository interface {
	// CreateUserWithAccountAndCharacter はユーザー、認証アカウント、ユーザーキャラクターを
	// 同一トランザクションで作成し、作成したユーザーを返す。
	// いずれかの作成に失敗した場合は何も残さない。
	CreateUserWithAccountAndCharacter(ctx context.Context, reg *model.UserRegistration) (*model.User, error)
}

// UserCharacterRepository はユーザーキャラクターの永続化インターフェース。
type UserCharacterRepository interface {
	// FindByUserID はユーザーの所有キャラクターを作成順に取得する。
	FindByUserID(ctx context.Context, userID int64) ([]*model.UserCharacter, error)
	// FindActiveByUserID はユーザーのアクティブなキャラクターを取得する。見つからない場合はnilを返す。
	FindActiveByUserID(ctx context.Context, userID int64) (*model.UserCharacter, error)
}

// CharacterRepository はキャラクターマスタの参照インターフェース。
type CharacterRepository interface {
	// FindAll はキャラクターマスタを全件取得する。
	FindAll(ctx context.Context) ([]*model.Character, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
