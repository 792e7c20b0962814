// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`

	// OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL,required,notEmpty"`

	// Token
	JWTSecret     string   `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiration Duration `env:"JWT_EXPIRATION" envDefault:"30d"`

	// Logging
	LoggerType string `env:"LOGGER_TYPE" envDefault:"console"`
	AppEnv     string `env:"APP_ENV" envDefault:"dev"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	TrustProxy bool   `env:"TRUST_PROXY" envDefault:"false"`

	// Rate Limit（1分あたりのIPごとのリクエスト数）
	RateLimitAuth int `env:"RATE_LIMIT_AUTH" envDefault:"20"`

	// Cookie
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// Duration はGoのduration表記に加えて "30d" のような日数表記を受け付ける期間。
type Duration time.Duration

// UnmarshalText は環境変数の値をDurationに変換する。
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std はtime.Durationに変換する。
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

const day = 24 * time.Hour

// maxDays はtime.Durationで表現できる最大の日数。
const maxDays = int64(math.MaxInt64 / day)

// ParseDuration は "720h" のようなGoのduration表記、または "30d" のような日数表記を解析する。
// 0以下の期間はエラーとする。
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseInt(days, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		if n > maxDays {
			return 0, fmt.Errorf("day duration out of range: %q", s)
		}
		d = time.Duration(n) * day
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.RateLimitAuth <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH must be positive: %d", cfg.RateLimitAuth)
	}

	return &cfg, nil
}
