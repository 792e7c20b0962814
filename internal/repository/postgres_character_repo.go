package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/aitrainer/internal/model"
)

// PostgresCharacterRepo はPostgreSQLを使用したキャラクターマスタリポジトリ。
type PostgresCharacterRepo struct {
	db *sql.DB
}

// NewPostgresCharacterRepo はPostgresCharacterRepoを生成する。
func NewPostgresCharacterRepo(db *sql.DB) *PostgresCharacterRepo {
	return &PostgresCharacterRepo{db: db}
}

// FindAll はキャラクターマスタをコード順に全件取得する。
func (r *PostgresCharacterRepo) FindAll(ctx context.Context) ([]*model.Character, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT character_code, name, description, created_at, updated_at
		 FROM characters
		 ORDER BY character_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var result []*model.Character
	for rows.Next() {
		c := &model.Character{}
		var code string
		if err := rows.Scan(&code, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		c.Code = model.CharacterCode(code)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ CharacterRepository = (*PostgresCharacterRepo)(nil)
