package handlers

import (
	"net/http"
	"sort"

	"github.com/wengjjpaul/DKPhonicsCardGame/database"
	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"
	"github.com/wengjjpaul/DKPhonicsCardGame/sessions"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartGame はゲームを開始します（ホストのみ）。
// デッキを作ってシャッフルし、接続中のプレイヤーに Position 順で配り、
// 最初の場札（必ずフォニックスカード）と最初の手番を決めます。
func StartGame(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the host can start the game"})
		return
	}

	if state.Status != models.StatusWaiting {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game has already started"})
		return
	}

	var connectedPlayers []models.Player
	for _, p := range state.Players {
		if p.IsConnected {
			connectedPlayers = append(connectedPlayers, p)
		}
	}
	if len(connectedPlayers) < models.MinPlayers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Need at least 2 players to start"})
		return
	}

	// 配り切った後に最初の場札用のカードが残らない組み合わせは開始できない
	if !game.CanDeal(len(connectedPlayers), state.Settings.CardsPerPlayer) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough cards for this many players"})
		return
	}

	// デッキを作って配り、最初の場札を決める
	randGen := game.NewRandGen()
	deck := game.CreateDeck(randGen)
	hands, remainingDeck := game.DealCards(deck, len(connectedPlayers), state.Settings.CardsPerPlayer)
	playPile, drawPile, currentSuit := game.SelectStarter(remainingDeck, randGen)

	startingPlayerIndex := game.DetermineStartingPlayer(
		len(connectedPlayers), state.Settings.StartingPlayerMode, state.Settings.StartingPlayerIndex, randGen)

	status := models.StatusPlaying
	direction := models.DirectionForward
	err = database.UpdateGameState(db, state.ID, database.GameStateUpdates{
		Status:        &status,
		CurrentPlayer: &startingPlayerIndex,
		Direction:     &direction,
		CurrentSuit:   &currentSuit,
		DrawPile:      drawPile,
		PlayPile:      playPile,
	})
	if err != nil {
		logger.Error("ゲーム開始の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start game"})
		return
	}

	// 接続中のプレイヤーに Position 順で手札を保存
	sort.Slice(connectedPlayers, func(i, j int) bool {
		return connectedPlayers[i].Position < connectedPlayers[j].Position
	})
	handUpdates := make([]database.HandUpdate, len(connectedPlayers))
	for i, player := range connectedPlayers {
		handUpdates[i] = database.HandUpdate{
			GameID:    state.ID,
			SessionID: player.SessionID,
			Hand:      hands[i],
		}
	}
	if err := database.UpdatePlayersHands(db, handUpdates); err != nil {
		logger.Error("手札の保存に失敗しました", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start game"})
		return
	}

	logger.Info("ゲームを開始しました", zap.String("code", state.Code), zap.Int("players", len(connectedPlayers)))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Game started"})
}
