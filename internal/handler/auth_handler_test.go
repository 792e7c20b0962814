package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/aitrainer/internal/auth"
	"github.com/hitoshi/aitrainer/internal/ctxutil"
	"github.com/hitoshi/aitrainer/internal/model"
	"github.com/hitoshi/aitrainer/internal/repository"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn  func(state string) string
	authenticateFn func(ctx context.Context, code string) (*auth.Result, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) AuthenticateWithGoogle(ctx context.Context, code string) (*auth.Result, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, code)
	}
	return nil, nil
}

// compile-time interface check
var _ AuthServiceInterface = (*mockAuthService)(nil)

func testUser(id int64) *model.User {
	email := "a@x.com"
	name := "A"
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.User{ID: id, Email: &email, Name: &name, CreatedAt: ts, UpdatedAt: ts}
}

func withUserID(r *http.Request, userID int64) *http.Request {
	return r.WithContext(ctxutil.WithUserID(r.Context(), userID))
}

func decodeAPIError(t *testing.T, resp *http.Response) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// --- テスト ---

func TestAuthHandler_Login_RedirectsToOAuthURL(t *testing.T) {
	var gotState string
	svc := &mockAuthService{
		getLoginURLFn: func(state string) string {
			gotState = state
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, nil, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("Location = %q, want Google auth URL", loc)
	}
	if gotState == "" {
		t.Fatal("expected non-empty state")
	}

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if stateCookie.Value != gotState {
		t.Errorf("cookie value = %q, want %q", stateCookie.Value, gotState)
	}
	if !stateCookie.HttpOnly {
		t.Error("oauth_state cookie should be HttpOnly")
	}
}

func TestAuthHandler_Callback_NewUser_ReturnsTokenJSON(t *testing.T) {
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, code string) (*auth.Result, error) {
			if code != "valid-1" {
				t.Errorf("code = %q, want %q", code, "valid-1")
			}
			return &auth.Result{IsNewUser: true, Token: "jwt-token", User: testUser(7)}, nil
		},
	}
	h := NewAuthHandler(svc, nil, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=valid-1&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.IsNewUser {
		t.Error("is_new_user = false, want true")
	}
	if body.Token != "jwt-token" {
		t.Errorf("token = %q, want %q", body.Token, "jwt-token")
	}
	if body.User.ID != 7 || *body.User.Email != "a@x.com" {
		t.Errorf("user = %+v", body.User)
	}
	if body.User.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("created_at = %q", body.User.CreatedAt)
	}

	// stateCookieは消費後に削除される
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected oauth_state cookie to be cleared")
	}
}

func TestAuthHandler_Callback_WithoutStateCookie_Accepted(t *testing.T) {
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, code string) (*auth.Result, error) {
			return &auth.Result{IsNewUser: false, Token: "t", User: testUser(42)}, nil
		},
	}
	h := NewAuthHandler(svc, nil, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=valid-2", nil)
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthHandler_Callback_MissingCode_ReturnsBadRequest(t *testing.T) {
	called := false
	svc := &mockAuthService{
		authenticateFn: func(ctx context.Context, code string) (*auth.Result, error) {
			called = true
			return nil, nil
		},
	}
	h := NewAuthHandler(svc, nil, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback", nil)
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, resp); body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
	if called {
		t.Error("service should not be called without code")
	}
}

func TestAuthHandler_Callback_StateMismatch_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state=wrong", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, resp); body.Code != model.ErrCodeInvalidState {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidState)
	}
}

func TestAuthHandler_Callback_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "exchange failure",
			err:        fmt.Errorf("%w: %w", auth.ErrIdentityExchange, errors.New("invalid_grant")),
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.ErrCodeAuthenticationFailed,
		},
		{
			name:       "empty code",
			err:        auth.ErrEmptyCode,
			wantStatus: http.StatusBadRequest,
			wantCode:   model.ErrCodeInvalidRequest,
		},
		{
			name:       "registration conflict",
			err:        fmt.Errorf("failed to register user: %w", repository.ErrAuthAccountConflict),
			wantStatus: http.StatusInternalServerError,
			wantCode:   model.ErrCodeInternal,
		},
		{
			name:       "unexpected",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   model.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				authenticateFn: func(ctx context.Context, code string) (*auth.Result, error) {
					return nil, tt.err
				},
			}
			h := NewAuthHandler(svc, nil, AuthHandlerConfig{}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=bad", nil)
			w := httptest.NewRecorder()

			h.Callback(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decodeAPIError(t, resp)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			// 内部エラーの詳細はレスポンスに含めない
			if strings.Contains(body.Message, "db down") {
				t.Errorf("message leaks internal error: %q", body.Message)
			}
		})
	}
}

func TestAuthHandler_Me_Authenticated_ReturnsUserJSON(t *testing.T) {
	users := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			if id != 42 {
				t.Errorf("id = %d, want 42", id)
			}
			return testUser(42), nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, users, AuthHandlerConfig{}, nil)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), 42)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body userResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != 42 {
		t.Errorf("id = %d, want 42", body.ID)
	}
	if body.AvatarURL != nil {
		t.Errorf("avatar_url = %v, want null", *body.AvatarURL)
	}
}

func TestAuthHandler_Me_UserDeleted_ReturnsNotFound(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{}, AuthHandlerConfig{}, nil)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), 999)
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if body := decodeAPIError(t, resp); body.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUserNotFound)
	}
}

func TestAuthHandler_Me_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserService{}, AuthHandlerConfig{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
