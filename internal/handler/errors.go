package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aitrainer/internal/auth"
	"github.com/hitoshi/aitrainer/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 想定外のエラーは詳細をログにのみ出力し、500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var apiErr *model.APIError
	switch {
	case errors.As(err, &apiErr):
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
	case errors.Is(err, auth.ErrEmptyCode):
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("code is required"))
	case errors.Is(err, auth.ErrIdentityExchange):
		logger.WarnContext(r.Context(), "identity exchange failed", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationFailedError())
	case errors.Is(err, auth.ErrInvalidToken):
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
	default:
		logger.ErrorContext(r.Context(), "internal server error", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
	}
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidState:
		return http.StatusBadRequest
	case model.ErrCodeAuthenticationFailed, model.ErrCodeUnauthorized, model.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound, model.ErrCodeUserCharacterNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
