package models

import "time"

// GameStatus はゲームの進行状態です。waiting → playing → finished の一方向にのみ遷移します。
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// 手番の進行方向。1 = 時計回り、-1 = 反時計回り。
const (
	DirectionForward  = 1
	DirectionBackward = -1
)

// プレイヤー数の制限
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// GameState はサーバー側の正式なゲーム状態（全カード情報を含む）です。
// 不変条件: 全手札 + 山札 + 場札 = 50枚、ホストは常に1人、
// CurrentSuit はゲーム開始後は空にならない。
type GameState struct {
	ID                 uint         `json:"id"`
	Code               string       `json:"code"` // 4文字の参加コード
	Status             GameStatus   `json:"status"`
	HostSessionID      string       `json:"hostSessionId"`
	Players            []Player     `json:"players"` // Position 順
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Direction          int          `json:"direction"`
	CurrentSuit        string       `json:"currentSuit"` // 空文字 = スート制約なし（ゲーム開始前のみ）
	DrawPile           []Card       `json:"drawPile"`    // 先頭 = 次に引くカード
	PlayPile           []Card       `json:"playPile"`    // 末尾 = 場の一番上のカード
	WinnerSessionID    string       `json:"winnerSessionId"`
	Settings           GameSettings `json:"settings"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Clone は状態遷移用のディープコピーを返します。
// エンジンは渡された状態を直接変更せず、必ずコピーの上で新しいスナップショットを構築します。
func (g *GameState) Clone() *GameState {
	clone := *g

	clone.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := p
		cp.Hand = make([]Card, len(p.Hand))
		copy(cp.Hand, p.Hand)
		clone.Players[i] = cp
	}

	clone.DrawPile = make([]Card, len(g.DrawPile))
	copy(clone.DrawPile, g.DrawPile)
	clone.PlayPile = make([]Card, len(g.PlayPile))
	copy(clone.PlayPile, g.PlayPile)

	return &clone
}
