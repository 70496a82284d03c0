package models

// ClientGameState はクライアントに送るゲーム状態の射影です。
// 他プレイヤーの手札は枚数のみ、リクエスト元本人の手札だけ中身を含みます。
// キャッシュせず、リクエストごとに再計算すること。
type ClientGameState struct {
	ID                 uint                `json:"id"`
	Code               string              `json:"code"`
	Status             GameStatus          `json:"status"`
	Players            []PlayerGameState   `json:"players"`
	CurrentPlayer      *CurrentPlayerState `json:"currentPlayer"` // リクエスト元が参加者でない場合は nil
	CurrentPlayerIndex int                 `json:"currentPlayerIndex"`
	Direction          int                 `json:"direction"`
	CurrentSuit        string              `json:"currentSuit"`
	TopCard            *Card               `json:"topCard"` // 場の一番上のカード
	DrawPileCount      int                 `json:"drawPileCount"`
	PlayPileCount      int                 `json:"playPileCount"`
	WinnerSessionID    string              `json:"winnerSessionId"`
	Settings           GameSettings        `json:"settings"`
}
