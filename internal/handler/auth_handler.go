// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/aitrainer/internal/auth"
	"github.com/hitoshi/aitrainer/internal/ctxutil"
	"github.com/hitoshi/aitrainer/internal/model"
)

const oauthStateCookie = "oauth_state"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	AuthenticateWithGoogle(ctx context.Context, code string) (*auth.Result, error)
}

// UserFinder はログインユーザー取得に必要なインターフェース。
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	users   UserFinder
	config  AuthHandlerConfig
	logger  *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, users UserFinder, config AuthHandlerConfig, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthHandler{
		service: service,
		users:   users,
		config:  config,
		logger:  logger,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /api/auth/google
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	// stateをCookieに保存（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   600, // 10分
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理し、セッショントークンとユーザーを返す。
// GET /api/auth/google/callback?code=xxx&state=yyy
//
// モバイルクライアントはstate Cookieを持たないため、Cookieがある場合のみstateを検証する。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// 1. stateの検証（CSRF対策）
	if stateCookie, err := r.Cookie(oauthStateCookie); err == nil {
		h.clearStateCookie(w)
		if stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
			h.logger.WarnContext(r.Context(), "oauth state mismatch")
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStateError())
			return
		}
	}

	// 2. 認可コードの取得
	code := q.Get("code")
	if code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("code is required"))
		return
	}

	// 3. 認証処理
	result, err := h.service.AuthenticateWithGoogle(r.Context(), code)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		IsNewUser: result.IsNewUser,
		Token:     result.Token,
		User:      toUserResponse(result.User),
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/api/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
