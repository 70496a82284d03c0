package models

// CreateGameRequest はゲーム作成リクエストのボディです。
type CreateGameRequest struct {
	PlayerName string        `json:"playerName"`
	Settings   *GameSettings `json:"settings"`
}

// JoinGameRequest はゲーム参加リクエストのボディです。
type JoinGameRequest struct {
	PlayerName string `json:"playerName"`
}

// PlayCardRequest はカードプレイリクエストのボディです。
// DeclaredSuit は Change カードをプレイする場合のみ必須。
type PlayCardRequest struct {
	CardID       string `json:"cardId"`
	DeclaredSuit string `json:"declaredSuit"`
}
