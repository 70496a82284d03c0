package handlers

import (
	"net/http"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/database"
	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/sessions"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetGame はポーリング用のエンドポイントです。
// リクエスト元向けの射影と updatedAt を返します。クライアントは updatedAt が
// 前回と同じであれば状態の置き換えをスキップできます。
func GetGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	state, ok := fetchGameByCode(c, db, logger)
	if !ok {
		return
	}

	// 参加者のポーリングは生存確認を兼ねる
	isPlayer := game.PlayerBySession(state, session.SessionID) != nil
	if isPlayer {
		if err := database.UpdatePlayerLastSeen(db, state.ID, session.SessionID); err != nil {
			logger.Warn("生存確認時刻の更新に失敗しました", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"game":      BuildClientGameState(state, session.SessionID),
		"isPlayer":  isPlayer,
		"updatedAt": state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}
