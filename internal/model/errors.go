package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, character, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeInvalidState          = "INVALID_STATE"
	ErrCodeAuthenticationFailed  = "AUTHENTICATION_FAILED"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidToken          = "INVALID_TOKEN"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeUserCharacterNotFound = "USER_CHARACTER_NOT_FOUND"
	ErrCodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストパラメータ不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストパラメータが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidStateError はOAuth stateの不一致エラーを生成する。
func NewInvalidStateError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidState,
		Message:  "認証リクエストの検証に失敗しました。",
		Category: "auth",
		Action:   "もう一度ログインをやり直してください。",
	}
}

// NewAuthenticationFailedError はIdPとの認可コード交換失敗エラーを生成する。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  "Googleアカウントでの認証に失敗しました。",
		Category: "auth",
		Action:   "もう一度ログインをやり直してください。",
	}
}

// NewUnauthorizedError はトークン未指定エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "No token provided",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid or expired token",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUserCharacterNotFoundError はアクティブなキャラクターが見つからない場合のエラーを生成する。
func NewUserCharacterNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserCharacterNotFound,
		Message:  "アクティブなキャラクターが見つかりません。",
		Category: "character",
		Action:   "キャラクターを選択してください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログにのみ記録し、レスポンスには含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
