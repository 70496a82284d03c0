package models

// StartingPlayerMode は最初の手番プレイヤーの決め方です。
const (
	StartingModeRandom   = "random"
	StartingModeYoungest = "youngest"
	StartingModeManual   = "manual"
)

// GameSettings はゲーム開始前に設定可能なオプションです。
type GameSettings struct {
	CardsPerPlayer           int    `json:"cardsPerPlayer"`
	StartingPlayerMode       string `json:"startingPlayerMode"`
	StartingPlayerIndex      int    `json:"startingPlayerIndex,omitempty"` // manual モードでのみ使用
	EnableReverseFor2Players bool   `json:"enableReverseFor2Players"`     // false の場合、2人対戦の Reverse は一回休み扱い
	EnableTTS                bool   `json:"enableTTS"`
	TTSSpeed                 string `json:"ttsSpeed"`
}

// DefaultGameSettings は設定のデフォルト値を返します。
func DefaultGameSettings() GameSettings {
	return GameSettings{
		CardsPerPlayer:           5,
		StartingPlayerMode:       StartingModeRandom,
		EnableReverseFor2Players: false,
		EnableTTS:                true,
		TTSSpeed:                 "normal",
	}
}
