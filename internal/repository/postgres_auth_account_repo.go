package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/aitrainer/internal/model"
)

// PostgresAuthAccountRepo はPostgreSQLを使用した認証アカウントリポジトリ。
type PostgresAuthAccountRepo struct {
	db *sql.DB
}

// NewPostgresAuthAccountRepo はPostgresAuthAccountRepoを生成する。
func NewPostgresAuthAccountRepo(db *sql.DB) *PostgresAuthAccountRepo {
	return &PostgresAuthAccountRepo{db: db}
}

// FindByProvider はproviderとprovider_account_idで認証アカウントを検索する。
// 紐付け先ユーザーも同時に取得する。見つからない場合はnilを返す。
func (r *PostgresAuthAccountRepo) FindByProvider(ctx context.Context, provider, providerAccountID string) (*model.AuthAccountWithUser, error) {
	a := &model.AuthAccountWithUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.provider, a.provider_account_id, a.user_id,
		        a.access_token, a.refresh_token, a.id_token, a.token_type, a.scope, a.expires_at,
		        a.created_at, a.updated_at,
		        u.id, u.email, u.name, u.avatar_url, u.created_at, u.updated_at
		 FROM auth_accounts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.provider = $1 AND a.provider_account_id = $2`,
		provider, providerAccountID,
	).Scan(
		&a.ID, &a.Provider, &a.ProviderAccountID, &a.UserID,
		&a.AccessToken, &a.RefreshToken, &a.IDToken, &a.TokenType, &a.Scope, &a.ExpiresAt,
		&a.CreatedAt, &a.UpdatedAt,
		&a.User.ID, &a.User.Email, &a.User.Name, &a.User.AvatarURL, &a.User.CreatedAt, &a.User.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth account: %w", err)
	}

	return a, nil
}

// compile-time interface check
var _ AuthAccountRepository = (*PostgresAuthAccountRepo)(nil)
