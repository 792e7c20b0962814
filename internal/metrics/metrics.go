// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果ラベル。
const (
	LoginResultNewUser      = "new_user"
	LoginResultExistingUser = "existing_user"
)

// ログイン失敗理由ラベル。
const (
	FailureReasonEmptyCode    = "empty_code"
	FailureReasonExchange     = "identity_exchange"
	FailureReasonLookup       = "account_lookup"
	FailureReasonRegistration = "registration"
	FailureReasonToken        = "token_sign"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービスやミドルウェアから利用する。
type MetricsCollector interface {
	RecordLogin(result string)
	RecordLoginFailure(reason string)
	RecordHTTPStatus(statusCode int)
	RecordOAuthExchangeLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins          *prometheus.CounterVec
	loginFailures   *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	exchangeLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aitrainer_logins_total",
			Help: "ログイン成功の合計数（新規/既存ユーザー別）",
		}, []string{"result"}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aitrainer_login_failures_total",
			Help: "ログイン失敗の合計数（理由別）",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aitrainer_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		exchangeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aitrainer_oauth_exchange_latency_seconds",
			Help:    "OAuth認可コード交換のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.loginFailures,
		c.httpStatus,
		c.exchangeLatency,
	)

	return c
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFailures.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordOAuthExchangeLatency は認可コード交換のレイテンシを記録する。
func (c *Collector) RecordOAuthExchangeLatency(duration time.Duration) {
	c.exchangeLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
