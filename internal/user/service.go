// Package user はユーザーとキャラクター参照のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/aitrainer/internal/model"
	"github.com/hitoshi/aitrainer/internal/repository"
)

// Service はユーザー参照のサービス層。
type Service struct {
	userRepo      repository.UserRepository
	userCharRepo  repository.UserCharacterRepository
	characterRepo repository.CharacterRepository
	logger        *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	userCharRepo repository.UserCharacterRepository,
	characterRepo repository.CharacterRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		userRepo:      userRepo,
		userCharRepo:  userCharRepo,
		characterRepo: characterRepo,
		logger:        logger,
	}
}

// GetUserByID は指定IDのユーザーを取得する。存在しない場合はnil, nilを返す。
func (s *Service) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListCharacters はユーザーの所有キャラクターを作成順に返す。
func (s *Service) ListCharacters(ctx context.Context, userID int64) ([]*model.UserCharacter, error) {
	chars, err := s.userCharRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user characters: %w", err)
	}
	if chars == nil {
		chars = []*model.UserCharacter{}
	}
	return chars, nil
}

// GetActiveCharacter はユーザーのアクティブなキャラクターを返す。
// 見つからない場合はUSER_CHARACTER_NOT_FOUNDのAPIErrorを返す。
func (s *Service) GetActiveCharacter(ctx context.Context, userID int64) (*model.UserCharacter, error) {
	uc, err := s.userCharRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active character: %w", err)
	}
	if uc == nil {
		s.logger.WarnContext(ctx, "active character not found", slog.Int64("user_id", userID))
		return nil, model.NewUserCharacterNotFoundError()
	}
	return uc, nil
}

// ListCharacterMaster はキャラクターマスタを返す。
func (s *Service) ListCharacterMaster(ctx context.Context) ([]*model.Character, error) {
	chars, err := s.characterRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	if chars == nil {
		chars = []*model.Character{}
	}
	return chars, nil
}
