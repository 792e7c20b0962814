package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aitrainer/internal/ctxutil"
	"github.com/hitoshi/aitrainer/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListCharacters(ctx context.Context, userID int64) ([]*model.UserCharacter, error)
	GetActiveCharacter(ctx context.Context, userID int64) (*model.UserCharacter, error)
	ListCharacterMaster(ctx context.Context) ([]*model.Character, error)
}

// UserHandler はユーザーとキャラクターのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	logger  *slog.Logger
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// ListCharacters はログインユーザーの所有キャラクター一覧を返す。
// GET /api/users/me/characters
func (h *UserHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	chars, err := h.service.ListCharacters(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]userCharacterResponse, 0, len(chars))
	for _, uc := range chars {
		resp = append(resp, toUserCharacterResponse(uc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"characters": resp})
}

// GetActiveCharacter はログインユーザーのアクティブなキャラクターを返す。
// GET /api/users/me/character
func (h *UserHandler) GetActiveCharacter(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	uc, err := h.service.GetActiveCharacter(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserCharacterResponse(uc))
}

// ListCharacterMaster はキャラクターマスタ一覧を返す。
// GET /api/characters
func (h *UserHandler) ListCharacterMaster(w http.ResponseWriter, r *http.Request) {
	chars, err := h.service.ListCharacterMaster(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]characterResponse, 0, len(chars))
	for _, c := range chars {
		resp = append(resp, toCharacterResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"characters": resp})
}
