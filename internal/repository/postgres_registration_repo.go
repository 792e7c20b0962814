package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/aitrainer/internal/model"
)

// ErrAuthAccountConflict は同一の(provider, provider_account_id)が既に登録済みであることを示す。
// 同じIdPアカウントで初回ログインが競合した場合に後着側が受け取る。
var ErrAuthAccountConflict = errors.New("auth account already exists")

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

// PostgresRegistrationRepo はユーザー新規登録をPostgreSQLのトランザクションで行うリポジトリ。
type PostgresRegistrationRepo struct {
	db TxBeginner
}

// NewPostgresRegistrationRepo はPostgresRegistrationRepoを生成する。
func NewPostgresRegistrationRepo(db TxBeginner) *PostgresRegistrationRepo {
	return &PostgresRegistrationRepo{db: db}
}

// CreateUserWithAccountAndCharacter はusers、auth_accounts、user_charactersの3レコードを
// 同一トランザクションで作成する。途中で失敗した場合はロールバックされ、部分的なレコードは残らない。
func (r *PostgresRegistrationRepo) CreateUserWithAccountAndCharacter(ctx context.Context, reg *model.UserRegistration) (*model.User, error) {
	now := reg.User.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ユーザーを作成
	user := reg.User
	user.CreatedAt = now
	user.UpdatedAt = now
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, name, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		user.Email, user.Name, user.AvatarURL, now, now,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	// 認証アカウントを作成
	acc := reg.AuthAccount
	_, err = tx.ExecContext(ctx,
		`INSERT INTO auth_accounts
		   (provider, provider_account_id, user_id, access_token, refresh_token, id_token,
		    token_type, scope, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		acc.Provider, acc.ProviderAccountID, user.ID, acc.AccessToken, acc.RefreshToken, acc.IDToken,
		acc.TokenType, acc.Scope, acc.ExpiresAt, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to insert auth account: %w: %w", ErrAuthAccountConflict, err)
		}
		return nil, fmt.Errorf("failed to insert auth account: %w", err)
	}

	// デフォルトキャラクターを作成
	uc := reg.UserCharacter
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_characters
		   (user_id, character_code, nick_name, is_active, level, experience, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, string(uc.CharacterCode), uc.NickName, uc.IsActive, uc.Level, uc.Experience, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user character: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &user, nil
}

// isUniqueViolation はlib/pqのエラーが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// compile-time interface check
var _ RegistrationRepository = (*PostgresRegistrationRepo)(nil)
