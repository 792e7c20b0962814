package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// DefaultLogExcludePaths はリクエストログを出力しないパス。
var DefaultLogExcludePaths = []string{"/api/health"}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Unwrap はhttp.ResponseControllerから元のResponseWriterを参照できるようにする。
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// NewLoggingMiddleware はリクエストの受信と完了をログに出力するミドルウェアを返す。
// 受信時はdebugレベルで"API Request Received"、完了時は"API Request Completed"を出力する。
// 完了ログのレベルはステータスコードに応じてinfo/warn/errorとなる。
// 処理中にクライアントが切断した場合は、ハンドラーの応答有無にかかわらず"API Request Closed"をwarnで出力する。
// request_idとuser_idはロガーのハンドラーがコンテキストから付与する。
func NewLoggingMiddleware(logger *slog.Logger, excludePaths []string) func(next http.Handler) http.Handler {
	excluded := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excluded[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := excluded[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			start := time.Now()

			logger.DebugContext(ctx, "API Request Received",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			)

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			// 切断後にハンドラーが書き込んだステータスはクライアントに届かない
			if errors.Is(ctx.Err(), context.Canceled) {
				logger.WarnContext(ctx, "API Request Closed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Float64("duration_ms", durationMs),
				)
				return
			}

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "API Request Completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			)
		})
	}
}
