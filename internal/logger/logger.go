// Package logger はslogをフロントとしたロガーの生成を提供する。
// 出力形式はconsole（slogテキスト）、pretty（zap開発用コンソール）、json（zap本番用JSON）から選ぶ。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/hitoshi/aitrainer/internal/ctxutil"
)

// Type はロガーの出力形式。
type Type string

const (
	TypeConsole Type = "console"
	TypePretty  Type = "pretty"
	TypeJSON    Type = "json"
)

// EnvProduction は本番環境を表すAPP_ENVの値。
const EnvProduction = "prd"

// ParseType は文字列をTypeに変換する。空文字列はconsoleとして扱う。
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeConsole, nil
	case TypeConsole, TypePretty, TypeJSON:
		return t, nil
	default:
		return "", fmt.Errorf("unknown logger type %q (want console, pretty or json)", s)
	}
}

// LevelForEnv は実行環境からログレベルを決める。本番はinfo、それ以外はdebug。
func LevelForEnv(appEnv string) slog.Level {
	if appEnv == EnvProduction {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// New は指定形式のslog.Loggerを生成する。wがnilの場合はos.Stdoutに出力する。
// 生成したロガーはコンテキストのrequest_idとuser_idを各レコードに付与する。
func New(w io.Writer, t Type, level slog.Level) (*slog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	var h slog.Handler
	switch t {
	case TypeConsole, "":
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case TypePretty:
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(w),
			toZapLevel(level),
		)
		h = zapslog.NewHandler(core, zapslog.WithCaller(true))
	case TypeJSON:
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			toZapLevel(level),
		)
		h = zapslog.NewHandler(core, zapslog.WithCaller(true))
	default:
		return nil, fmt.Errorf("unknown logger type %q", t)
	}

	return slog.New(&contextHandler{next: h}), nil
}

// toZapLevel はslogのレベルをzapのレベルに変換する。
func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// contextHandler はコンテキストのリクエストIDとユーザーIDをレコードに付与するslog.Handler。
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := ctxutil.RequestIDFromContext(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if uid, ok := ctxutil.UserIDFromContext(ctx); ok {
			r.AddAttrs(slog.Int64("user_id", uid))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
