package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wengjjpaul/DKPhonicsCardGame/database"
	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fetchGameByCode はURLパラメータの参加コードからゲームを取得します。
// 見つからない場合は404、ストア障害は500を書き込み、ok=false を返します。
func fetchGameByCode(c *gin.Context, db *gorm.DB, logger *zap.Logger) (*models.GameState, bool) {
	code := strings.ToUpper(c.Param("code"))
	state, err := database.GetGameByCode(db, code)
	if errors.Is(err, database.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return nil, false
	}
	if err != nil {
		logger.Error("ゲーム取得に失敗しました", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get game"})
		return nil, false
	}
	return state, true
}

// BuildClientGameState はリクエスト元プレイヤー向けの射影を構築します。
// 他プレイヤーの手札は枚数のみ、本人の手札だけ中身を含めます。
// キャッシュ禁止。必ずリクエストごとに呼び出すこと。
func BuildClientGameState(state *models.GameState, sessionID string) *models.ClientGameState {
	playerStates := make([]models.PlayerGameState, len(state.Players))
	var currentPlayerState *models.CurrentPlayerState

	for i, p := range state.Players {
		ps := models.PlayerGameState{
			ID:            p.ID,
			Name:          p.Name,
			CardCount:     len(p.Hand),
			Position:      p.Position,
			IsHost:        p.IsHost,
			IsConnected:   p.IsConnected,
			IsCurrentTurn: p.Position == state.CurrentPlayerIndex,
		}
		playerStates[i] = ps

		if p.SessionID == sessionID {
			hand := make([]models.Card, len(p.Hand))
			copy(hand, p.Hand)
			currentPlayerState = &models.CurrentPlayerState{PlayerGameState: ps, Hand: hand}
		}
	}

	return &models.ClientGameState{
		ID:                 state.ID,
		Code:               state.Code,
		Status:             state.Status,
		Players:            playerStates,
		CurrentPlayer:      currentPlayerState,
		CurrentPlayerIndex: state.CurrentPlayerIndex,
		Direction:          state.Direction,
		CurrentSuit:        state.CurrentSuit,
		TopCard:            game.TopCard(state),
		DrawPileCount:      len(state.DrawPile),
		PlayPileCount:      len(state.PlayPile),
		WinnerSessionID:    state.WinnerSessionID,
		Settings:           state.Settings,
	}
}
