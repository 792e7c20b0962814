package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/aitrainer/internal/ctxutil"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダー名。
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLen はクライアント指定のリクエストIDとして受け入れる最大長。
const maxRequestIDLen = 128

// NewRequestIDMiddleware はリクエストIDをコンテキストに格納するミドルウェアを返す。
// クライアントがX-Request-Idを指定した場合はそれを使い、なければUUIDを生成する。
// 決定したIDはレスポンスヘッダーにも設定する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := ctxutil.WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
