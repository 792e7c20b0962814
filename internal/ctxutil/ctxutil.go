// Package ctxutil はリクエストスコープの値をcontext.Contextで受け渡すヘルパーを提供する。
package ctxutil

import "context"

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	requestIDKey ctxKey = "request_id"
)

// WithUserID は認証済みユーザーIDをコンテキストに格納する。
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext はコンテキストからユーザーIDを取り出す。
// 未設定または0以下の場合はfalseを返す。
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithRequestID はリクエストIDをコンテキストに格納する。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext はコンテキストからリクエストIDを取り出す。未設定の場合は空文字列。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
