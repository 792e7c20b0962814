package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/aitrainer/internal/model"
)

const userCharacterColumns = `id, user_id, character_code, nick_name, is_active, level, experience, created_at, updated_at`

// PostgresUserCharacterRepo はPostgreSQLを使用したユーザーキャラクターリポジトリ。
type PostgresUserCharacterRepo struct {
	db *sql.DB
}

// NewPostgresUserCharacterRepo はPostgresUserCharacterRepoを生成する。
func NewPostgresUserCharacterRepo(db *sql.DB) *PostgresUserCharacterRepo {
	return &PostgresUserCharacterRepo{db: db}
}

// FindByUserID はユーザーの所有キャラクターを作成順に取得する。
func (r *PostgresUserCharacterRepo) FindByUserID(ctx context.Context, userID int64) ([]*model.UserCharacter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userCharacterColumns+`
		 FROM user_characters
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user characters: %w", err)
	}
	defer rows.Close()

	var result []*model.UserCharacter
	for rows.Next() {
		uc, err := scanUserCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user character: %w", err)
		}
		result = append(result, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user characters: %w", err)
	}

	return result, nil
}

// FindActiveByUserID はユーザーのアクティブなキャラクターを取得する。見つからない場合はnilを返す。
func (r *PostgresUserCharacterRepo) FindActiveByUserID(ctx context.Context, userID int64) (*model.UserCharacter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userCharacterColumns+`
		 FROM user_characters
		 WHERE user_id = $1 AND is_active = TRUE
		 LIMIT 1`,
		userID,
	)

	uc, err := scanUserCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active user character: %w", err)
	}

	return uc, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserCharacter(s rowScanner) (*model.UserCharacter, error) {
	uc := &model.UserCharacter{}
	var code string
	if err := s.Scan(
		&uc.ID, &uc.UserID, &code, &uc.NickName, &uc.IsActive,
		&uc.Level, &uc.Experience, &uc.CreatedAt, &uc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	uc.CharacterCode = model.CharacterCode(code)
	return uc, nil
}

// compile-time interface check
var _ UserCharacterRepository = (*PostgresUserCharacterRepo)(nil)
