package models

// SessionData はRedisに保存されるセッション情報です。
// 認証情報ではなく、ブラウザ単位の匿名の相関キーにすぎません。
type SessionData struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName,omitempty"`
	CreatedAt  string `json:"createdAt"` // ISO形式のタイムスタンプ
}

// UpdateSessionRequest はセッション更新リクエストのボディです。
type UpdateSessionRequest struct {
	PlayerName string `json:"playerName"`
}
