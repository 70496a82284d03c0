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

// LeaveGame はゲームからの離脱を処理します。
//   - ロビーでホストが抜けた場合はゲームごと削除
//   - ロビーで参加者が抜けた場合は行ごと削除（Position の振り直しはしない）
//   - プレイ中は切断マークのみ。手番を持っていた場合は次の接続中プレイヤーへ。
//     接続中が2人未満になったら即終了（1人残っていればそのプレイヤーの勝ち）。
func LeaveGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	state, ok := fetchGameByCode(c, db, logger)
	if !ok {
		return
	}

	player := game.PlayerBySession(state, session.SessionID)
	if player == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not in this game"})
		return
	}

	// ロビーのホスト離脱はゲームごと削除
	if player.IsHost && state.Status == models.StatusWaiting {
		if err := database.DeleteGame(db, state.ID); err != nil {
			logger.Error("ゲーム削除に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave game"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Game deleted", "gameDeleted": true})
		return
	}

	// プレイ中の離脱
	if state.Status == models.StatusPlaying {
		// 手番を進めるかどうかの判断は、直前に読んだ正式な状態に対して行う
		// （離脱とプレイ操作の競合を完全には防げないが、窓を最小化する）
		resolution := game.ResolveLeave(state, session.SessionID)

		if _, err := database.RemovePlayerFromGame(db, state.ID, session.SessionID, false); err != nil {
			logger.Error("切断マークに失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave game"})
			return
		}

		if resolution.GameEnded {
			status := models.StatusFinished
			winner := resolution.WinnerSessionID
			err := database.UpdateGameState(db, state.ID, database.GameStateUpdates{
				Status:          &status,
				WinnerSessionID: &winner,
			})
			if err != nil {
				logger.Error("ゲーム終了の保存に失敗しました", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave game"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"success":     true,
				"message":     "Not enough players to continue",
				"gameDeleted": false,
				"gameEnded":   true,
			})
			return
		}

		if resolution.AdvanceTurn {
			err := database.UpdateGameState(db, state.ID, database.GameStateUpdates{
				CurrentPlayer: &resolution.NextPlayerIndex,
			})
			if err != nil {
				logger.Error("手番の保存に失敗しました", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave game"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Disconnected from game",
			"gameDeleted": false,
			"gameEnded":   false,
		})
		return
	}

	// ロビーの参加者は行ごと削除、終了後のゲームは切断マークのみ
	hardDelete := state.Status == models.StatusWaiting
	if _, err := database.RemovePlayerFromGame(db, state.ID, session.SessionID, hardDelete); err != nil {
		logger.Error("プレイヤー削除に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave game"})
		return
	}

	message := "Disconnected from game"
	if hardDelete {
		message = "Left game"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "gameDeleted": false})
}
