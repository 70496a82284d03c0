package handlers

import (
	"net/http"

	"github.com/wengjjpaul/DKPhonicsCardGame/database"
	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"
	"github.com/wengjjpaul/DKPhonicsCardGame/sessions"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DrawCard は山札からカードを1枚引きます。
// 出せるカードを持っている間は引けません。引いたら手番は次へ移ります。
func DrawCard(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	state, ok := fetchGameByCode(c, db, logger)
	if !ok {
		return
	}

	if state.Status != models.StatusPlaying {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game is not in progress"})
		return
	}

	result := game.DrawCard(state, session.SessionID, game.NewRandGen())
	if !result.Success {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Error})
		return
	}

	newState := result.NewState
	err = database.UpdateGameState(db, state.ID, database.GameStateUpdates{
		Status:          &newState.Status,
		CurrentPlayer:   &newState.CurrentPlayerIndex,
		DrawPile:        newState.DrawPile,
		PlayPile:        newState.PlayPile,
		WinnerSessionID: &newState.WinnerSessionID,
	})
	if err != nil {
		logger.Error("ドロー結果の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to draw card"})
		return
	}

	if player := game.PlayerBySession(newState, session.SessionID); player != nil {
		if err := database.UpdatePlayerHand(db, state.ID, session.SessionID, player.Hand); err != nil {
			logger.Error("手札の保存に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to draw card"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": result.Events})
}
