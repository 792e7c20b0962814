package model

import "time"

// CharacterCode はキャラクターマスタの識別子。
type CharacterCode string

const (
	CharacterTraechan CharacterCode = "TRAECHAN"
	CharacterMaster   CharacterCode = "MASTER"
)

// 新規ユーザーに割り当てるデフォルトキャラクター
const (
	DefaultCharacterCode     = CharacterTraechan
	DefaultCharacterNickName = "トレちゃん"
)

// Valid はマスタに存在するコードかどうかを返す。
func (c CharacterCode) Valid() bool {
	switch c {
	case CharacterTraechan, CharacterMaster:
		return true
	default:
		return false
	}
}

// Character はキャラクターマスタを表す。
type Character struct {
	Code        CharacterCode
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCharacter はユーザーが所有するキャラクターを表す。
// ユーザーごとにアクティブなキャラクターは1体のみ。
type UserCharacter struct {
	ID            int64
	UserID        int64
	CharacterCode CharacterCode
	NickName      string
	IsActive      bool
	Level         int
	Experience    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewDefaultUserCharacter は新規登録時に作成するアクティブなデフォルトキャラクターを返す。
func NewDefaultUserCharacter() UserCharacter {
	return UserCharacter{
		CharacterCode: DefaultCharacterCode,
		NickName:      DefaultCharacterNickName,
		IsActive:      true,
		Level:         1,
		Experience:    0,
	}
}
