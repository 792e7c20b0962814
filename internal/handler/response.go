package handler

import (
	"time"

	"github.com/hitoshi/aitrainer/internal/model"
)

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        int64   `json:"id"`
	Email     *string `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// authResponse はOAuthコールバックのAPIレスポンス。
type authResponse struct {
	IsNewUser bool         `json:"is_new_user"`
	Token     string       `json:"token"`
	User      userResponse `json:"user"`
}

// userCharacterResponse はユーザーキャラクターのAPIレスポンス。
type userCharacterResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	CharacterCode string `json:"character_code"`
	NickName      string `json:"nick_name"`
	IsActive      bool   `json:"is_active"`
	Level         int    `json:"level"`
	Experience    int    `json:"experience"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// characterResponse はキャラクターマスタのAPIレスポンス。
type characterResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func toUserCharacterResponse(uc *model.UserCharacter) userCharacterResponse {
	return userCharacterResponse{
		ID:            uc.ID,
		UserID:        uc.UserID,
		CharacterCode: string(uc.CharacterCode),
		NickName:      uc.NickName,
		IsActive:      uc.IsActive,
		Level:         uc.Level,
		Experience:    uc.Experience,
		CreatedAt:     formatTime(uc.CreatedAt),
		UpdatedAt:     formatTime(uc.UpdatedAt),
	}
}

func toCharacterResponse(c *model.Character) characterResponse {
	return characterResponse{
		Code:        string(c.Code),
		Name:        c.Name,
		Description: c.Description,
	}
}
