package handlers

import (
	"net/http"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
	"github.com/wengjjpaul/DKPhonicsCardGame/sessions"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// GetSession はリクエスト元のセッションを返します（無ければ新規作成）。
func GetSession(c *gin.Context, rdb *redis.Client, logger *zap.Logger) {
	session, isNew, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "isNew": isNew})
}

// UpdateSession はセッションの表示名を更新します。
func UpdateSession(c *gin.Context, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	var request models.UpdateSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := sessions.UpdatePlayerName(c.Request.Context(), rdb, session.SessionID, request.PlayerName)
	if err != nil {
		logger.Error("セッション更新に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": updated, "isNew": false})
}
