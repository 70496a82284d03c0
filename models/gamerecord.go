package models

import (
	"time"

	"gorm.io/gorm"
)

// GameRecord モデルの定義。games テーブルの1行 = 1ゲーム。
// 手札・山札・場札はカードIDのJSON配列として保存します。
type GameRecord struct {
	gorm.Model
	Code            string  `gorm:"uniqueIndex;not null"` // 4文字の参加コード
	Status          string  `gorm:"not null"`
	HostSessionID   string  `gorm:"not null"`
	CurrentPlayer   int     `gorm:"not null"`
	Direction       int     `gorm:"not null"`
	CurrentSuit     *string // NULL = スート制約なし
	DrawPile        string  `gorm:"not null"` // カードIDのJSON配列
	PlayPile        string  `gorm:"not null"` // カードIDのJSON配列
	WinnerSessionID *string
	Settings        string `gorm:"not null"` // GameSettings のJSON
	Players         []GamePlayerRecord
}

// GamePlayerRecord モデルの定義。game_players テーブルの1行 = 1参加者。
type GamePlayerRecord struct {
	gorm.Model
	GameRecordID uint   `gorm:"index:idx_game_session,unique;not null"`
	SessionID    string `gorm:"index:idx_game_session,unique;not null"`
	Name         string `gorm:"not null"`
	Hand         string `gorm:"not null"` // カードIDのJSON配列
	Position     int    `gorm:"not null"`
	IsHost       bool   `gorm:"not null"`
	IsConnected  bool   `gorm:"not null"`
	LastSeen     time.Time
}
