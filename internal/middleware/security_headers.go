package middleware

import "net/http"

// NewSecurityHeadersMiddleware はJSON APIのレスポンスに付与するセキュリティヘッダーのミドルウェアを返す。
// レスポンスにはセッショントークンが含まれるため、キャッシュを禁止する。
// HTMLを返さないので、CSPはすべてのリソース読み込みとフレーム埋め込みを拒否する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
