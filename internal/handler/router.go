package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/aitrainer/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// サービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface

	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	StatusCounter     middleware.StatusCounter
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	TrustProxy        bool

	// その他
	DB             Pinger
	MetricsHandler http.Handler
	AuthConfig     AuthHandlerConfig
	Logger         *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → (RealIP) → Logging → StatusMetrics → Recovery → SecurityHeaders → CORS
//
// /api/auth/google と /api/auth/google/callback はレート制限のみを適用し、
// それ以外の /api 配下はBearerトークンによる認証を必須とする。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger, middleware.DefaultLogExcludePaths))
	if deps.StatusCounter != nil {
		r.Use(middleware.NewStatusMetricsMiddleware(deps.StatusCounter))
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService, deps.AuthConfig, logger)
	userHandler := NewUserHandler(deps.UserService, logger)
	healthHandler := NewHealthHandler(deps.DB, logger)

	// --- 認証不要のルート ---
	r.Get("/", healthHandler.Root)
	r.Get("/api/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// OAuthフロー
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Get("/api/auth/google", authHandler.Login)
		r.Get("/api/auth/google/callback", authHandler.Callback)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, nil, logger))

		r.Get("/api/auth/me", authHandler.Me)
		r.Get("/api/characters", userHandler.ListCharacterMaster)

		r.Route("/api/users/me", func(r chi.Router) {
			r.Get("/characters", userHandler.ListCharacters)
			r.Get("/character", userHandler.GetActiveCharacter)
		})
	})

	return r
}
