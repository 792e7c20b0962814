package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger はDB疎通確認に必要なインターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthCheckTimeout はヘルスチェック時のDB疎通確認のタイムアウト。
const healthCheckTimeout = 3 * time.Second

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler はHealthHandlerを生成する。dbがnilの場合はDB疎通確認を行わない。
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HealthHandler{db: db, logger: logger}
}

// Root はAPIの稼働確認用メッセージを返す。
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "aitrainer api"})
}

// Health はDB疎通を含むヘルスチェック結果を返す。
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
