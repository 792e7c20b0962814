package middleware

import (
	"context"
	"errors"
	"net/http"
)

// StatusCounter はHTTPステータスコードを記録するインターフェース。
// metrics.Collectorが満たす。
type StatusCounter interface {
	RecordHTTPStatus(statusCode int)
}

// NewStatusMetricsMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
// 処理中にクライアントが切断したリクエストは、届かなかった応答を数えないよう記録しない。
func NewStatusMetricsMiddleware(counter StatusCounter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rec, r)
			if errors.Is(r.Context().Err(), context.Canceled) {
				return
			}
			counter.RecordHTTPStatus(rec.statusCode)
		})
	}
}
