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

// JoinGame は参加コードで既存のゲームに参加します。
// 同じセッションが再度参加した場合は重複登録せず成功を返します（冪等）。
func JoinGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	var request models.JoinGameRequest
	_ = c.ShouldBindJSON(&request)

	playerName := request.PlayerName
	if playerName == "" {
		playerName = session.PlayerName
	}
	if playerName == "" {
		playerName = "Player"
	}

	state, ok := fetchGameByCode(c, db, logger)
	if !ok {
		return
	}

	// 開始後のゲームには参加できない
	if state.Status != models.StatusWaiting {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game has already started"})
		return
	}

	// 参加済みならそのまま成功
	if game.PlayerBySession(state, session.SessionID) != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Already in game",
			"game":    gin.H{"id": state.ID, "code": state.Code, "status": state.Status},
		})
		return
	}

	if len(state.Players) >= models.MaxPlayers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game is full"})
		return
	}

	updated, err := database.AddPlayerToGame(db, state.ID, session.SessionID, playerName, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join game"})
		return
	}

	logger.Info("プレイヤーが参加しました", zap.String("code", state.Code), zap.String("player", playerName))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game": gin.H{
			"id":      updated.ID,
			"code":    updated.Code,
			"status":  updated.Status,
			"players": lobbyPlayers(updated),
		},
	})
}
