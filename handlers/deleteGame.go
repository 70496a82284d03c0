package handlers

import (
	"net/http"

	"github.com/wengjjpaul/DKPhonicsCardGame/database"
	"github.com/wengjjpaul/DKPhonicsCardGame/sessions"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteGame はゲームを削除します（ホストのみ、どの状態でも可能）。
func DeleteGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	state, ok := fetchGameByCode(c, db, logger)
	if !ok {
		return
	}

	if state.HostSessionID != session.SessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only host can delete the game"})
		return
	}

	if err := database.DeleteGame(db, state.ID); err != nil {
		logger.Error("ゲーム削除に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	logger.Info("ゲームを削除しました", zap.String("code", state.Code))

	c.JSON(http.StatusOK, gin.H{"success": true})
}
