// Package auth はOAuth認証フローとセッショントークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/aitrainer/internal/metrics"
	"github.com/hitoshi/aitrainer/internal/model"
	"github.com/hitoshi/aitrainer/internal/repository"
)

var (
	// ErrEmptyCode は認可コードが空であることを示す。
	ErrEmptyCode = errors.New("authorization code is required")
	// ErrIdentityExchange は認可コードからIdPのユーザー情報を取得できなかったことを示す。
	// 上流のエラーはチェーンに保持される。
	ErrIdentityExchange = errors.New("failed to exchange authorization code for identity")
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、IdPのユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*model.ExternalIdentity, error)
}

// Result は認証結果を表す。
type Result struct {
	IsNewUser bool
	Token     string
	User      *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth         OAuthProvider
	accountRepo   repository.AuthAccountRepository
	registrations repository.RegistrationRepository
	signer        *TokenSigner
	metrics       metrics.MetricsCollector
	logger        *slog.Logger
	now           func() time.Time
}

// NewService はServiceを生成する。
// collectorはnilでもよい。
func NewService(
	oauth OAuthProvider,
	accountRepo repository.AuthAccountRepository,
	registrations repository.RegistrationRepository,
	signer *TokenSigner,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		oauth:         oauth,
		accountRepo:   accountRepo,
		registrations: registrations,
		signer:        signer,
		metrics:       collector,
		logger:        logger,
		now:           time.Now,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// AuthenticateWithGoogle は認可コードでGoogle認証を行い、セッショントークンを発行する。
// 未登録のIdPアカウントの場合はユーザー、認証アカウント、デフォルトキャラクターを同時に作成する。
// 登録済みの場合は既存ユーザーをそのまま返し、プロフィールは更新しない。
func (s *Service) AuthenticateWithGoogle(ctx context.Context, code string) (*Result, error) {
	if code == "" {
		s.recordFailure(metrics.FailureReasonEmptyCode)
		return nil, ErrEmptyCode
	}

	// 1. 認可コードをIdPのユーザー情報に交換
	started := s.now()
	identity, err := s.oauth.ExchangeCode(ctx, code)
	if s.metrics != nil {
		s.metrics.RecordOAuthExchangeLatency(s.now().Sub(started))
	}
	if err != nil {
		s.recordFailure(metrics.FailureReasonExchange)
		return nil, fmt.Errorf("%w: %w", ErrIdentityExchange, err)
	}

	// 2. 認証アカウントを検索
	account, err := s.accountRepo.FindByProvider(ctx, ProviderGoogle, identity.ID)
	if err != nil {
		s.recordFailure(metrics.FailureReasonLookup)
		return nil, fmt.Errorf("failed to find auth account: %w", err)
	}

	var (
		user      *model.User
		isNewUser bool
	)

	if account != nil {
		// 3a. 既存ユーザー
		u := account.User
		user = &u
		s.logger.InfoContext(ctx, "existing user logged in",
			slog.Int64("user_id", user.ID),
			slog.String("provider", ProviderGoogle),
		)
	} else {
		// 3b. 新規ユーザー: ユーザー、認証アカウント、キャラクターを一括作成
		user, err = s.registrations.CreateUserWithAccountAndCharacter(ctx, s.newRegistration(identity))
		if err != nil {
			s.recordFailure(metrics.FailureReasonRegistration)
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
		isNewUser = true
		s.logger.InfoContext(ctx, "new user registered",
			slog.Int64("user_id", user.ID),
			slog.String("provider", ProviderGoogle),
		)
	}

	// 4. セッショントークンを発行
	token, err := s.signer.Generate(user.ID)
	if err != nil {
		s.recordFailure(metrics.FailureReasonToken)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.metrics != nil {
		if isNewUser {
			s.metrics.RecordLogin(metrics.LoginResultNewUser)
		} else {
			s.metrics.RecordLogin(metrics.LoginResultExistingUser)
		}
	}

	return &Result{
		IsNewUser: isNewUser,
		Token:     token,
		User:      user,
	}, nil
}

// newRegistration はIdPのユーザー情報から新規登録の入力値を組み立てる。
func (s *Service) newRegistration(identity *model.ExternalIdentity) *model.UserRegistration {
	now := s.now()
	c := identity.Credentials

	var expiresAt *int64
	if !c.Expiry.IsZero() {
		v := c.Expiry.Unix()
		expiresAt = &v
	}

	character := model.NewDefaultUserCharacter()
	character.CreatedAt = now
	character.UpdatedAt = now

	return &model.UserRegistration{
		User: model.User{
			Email:     model.StringPtr(identity.Email),
			Name:      model.StringPtr(identity.Name),
			AvatarURL: model.StringPtr(identity.AvatarURL),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AuthAccount: model.AuthAccount{
			Provider:          ProviderGoogle,
			ProviderAccountID: identity.ID,
			AccessToken:       model.StringPtr(c.AccessToken),
			RefreshToken:      model.StringPtr(c.RefreshToken),
			IDToken:           model.StringPtr(c.IDToken),
			TokenType:         model.StringPtr(c.TokenType),
			Scope:             model.StringPtr(c.Scope),
			ExpiresAt:         expiresAt,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		UserCharacter: character,
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure(reason)
	}
}
