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

// 参加コードの生成リトライ上限
const maxCodeAttempts = 10

// CreateGame は waiting 状態の新しいゲームを作成し、リクエスト元をホストにします。
func CreateGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	session, _, err := sessions.EnsureSession(c, rdb, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	// ボディは省略可能。名前はボディ → セッション → デフォルトの順で決める。
	var request models.CreateGameRequest
	_ = c.ShouldBindJSON(&request)

	playerName := request.PlayerName
	if playerName == "" {
		playerName = session.PlayerName
	}
	if playerName == "" {
		playerName = "Player 1"
	}

	settings := models.DefaultGameSettings()
	if request.Settings != nil {
		settings = *request.Settings
		if settings.CardsPerPlayer <= 0 {
			settings.CardsPerPlayer = models.DefaultGameSettings().CardsPerPlayer
		}
		// 満員（6人）でも最初の場札が残る枚数までしか設定できない
		if settings.CardsPerPlayer > game.MaxCardsPerPlayer {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Too many cards per player"})
			return
		}
	}

	// 衝突しない参加コードを生成（リトライ上限あり）
	randGen := game.NewRandGen()
	code := game.GenerateGameCode(randGen)
	attempts := 0
	for attempts < maxCodeAttempts {
		available, err := database.IsGameCodeAvailable(db, code)
		if err != nil {
			logger.Error("参加コードの確認に失敗しました", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
			return
		}
		if available {
			break
		}
		code = game.GenerateGameCode(randGen)
		attempts++
	}
	if attempts >= maxCodeAttempts {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to generate game code. Please try again."})
		return
	}

	state, err := database.CreateGame(db, code, session.SessionID, playerName, settings, logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	logger.Info("ゲームを作成しました", zap.String("code", state.Code), zap.String("host", session.SessionID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game": gin.H{
			"id":      state.ID,
			"code":    state.Code,
			"status":  state.Status,
			"players": lobbyPlayers(state),
		},
	})
}

// lobbyPlayers はロビー表示用の最小限のプレイヤー情報を返します。
func lobbyPlayers(state *models.GameState) []gin.H {
	players := make([]gin.H, len(state.Players))
	for i, p := range state.Players {
		players[i] = gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"isHost":      p.IsHost,
			"isConnected": p.IsConnected,
		}
	}
	return players
}
