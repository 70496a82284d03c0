package models

import "time"

// Player はゲーム内の1人のプレイヤーを表します。
// SessionID は認証ではなくブラウザ単位の相関キーです。
// Position は参加時に割り当てられる手番順の固定インデックス（0始まり）。
type Player struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Name        string    `json:"name"`
	Hand        []Card    `json:"hand"`
	Position    int       `json:"position"`
	IsHost      bool      `json:"isHost"`
	IsConnected bool      `json:"isConnected"`
	LastSeen    time.Time `json:"lastSeen"`
}

// PlayerJoinInfo はゲーム作成・参加時に必要な最小限の情報です。
type PlayerJoinInfo struct {
	SessionID string
	Name      string
}

// PlayerGameState はクライアントに送る他プレイヤーの状態です。
// 手札の中身は見せず枚数のみを公開します。
type PlayerGameState struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CardCount     int    `json:"cardCount"`
	Position      int    `json:"position"`
	IsHost        bool   `json:"isHost"`
	IsConnected   bool   `json:"isConnected"`
	IsCurrentTurn bool   `json:"isCurrentTurn"`
}

// CurrentPlayerState はリクエスト元プレイヤー本人の状態で、手札の中身を含みます。
type CurrentPlayerState struct {
	PlayerGameState
	Hand []Card `json:"hand"`
}
