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

// PlayCard は手札からカードを1枚プレイします。
// エンジンが返した新しいスナップショット全体をストアに書き戻します。
func PlayCard(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	var request models.PlayCardRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.CardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card ID is required"})
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

	result := game.PlayCard(state, session.SessionID, request.CardID, request.DeclaredSuit)
	if !result.Success {
		// 未知のカードIDだけは not found として区別する
		status := http.StatusBadRequest
		if result.Error == "Card not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": result.Error})
		return
	}

	newState := result.NewState
	err = database.UpdateGameState(db, state.ID, database.GameStateUpdates{
		Status:          &newState.Status,
		CurrentPlayer:   &newState.CurrentPlayerIndex,
		Direction:       &newState.Direction,
		CurrentSuit:     &newState.CurrentSuit,
		DrawPile:        newState.DrawPile,
		PlayPile:        newState.PlayPile,
		WinnerSessionID: &newState.WinnerSessionID,
	})
	if err != nil {
		logger.Error("プレイ結果の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to play card"})
		return
	}

	if player := game.PlayerBySession(newState, session.SessionID); player != nil {
		if err := database.UpdatePlayerHand(db, state.ID, session.SessionID, player.Hand); err != nil {
			logger.Error("手札の保存に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to play card"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": result.Events})
}
