package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ゲーム状態の永続化層。手札・山札・場札はカードIDのJSON配列として保存し、
// 読み出し時にカタログから完全な GameState を再構築します。
// 読み出しは常にプレイヤーを Position 順に並べた完全な状態を返します。

// ErrGameNotFound は指定のコード・IDのゲームが存在しない場合に返されます。
var ErrGameNotFound = errors.New("game not found")

// SerializeCards はカード列をIDのJSON配列に変換します。
func SerializeCards(cards []models.Card) string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

// DeserializeCards はIDのJSON配列からカード列を復元します。
// カタログに存在しないIDは黙って読み飛ばします。
func DeserializeCards(raw string) []models.Card {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	cards := make([]models.Card, 0, len(ids))
	for _, id := range ids {
		if c, ok := game.GetCardByID(id); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// SerializeSettings は設定をJSONに変換します。
func SerializeSettings(settings models.GameSettings) string {
	data, _ := json.Marshal(settings)
	return string(data)
}

// DeserializeSettings はJSONから設定を復元します。
// 欠けているフィールドはデフォルト値で補完します。
func DeserializeSettings(raw string) models.GameSettings {
	settings := models.DefaultGameSettings()
	_ = json.Unmarshal([]byte(raw), &settings)
	return settings
}

// RecordToGameState はDBの行から完全な GameState を再構築します。
func RecordToGameState(rec *models.GameRecord) *models.GameState {
	players := make([]models.Player, len(rec.Players))
	for i, p := range rec.Players {
		players[i] = models.Player{
			ID:          playerRecordID(&rec.Players[i]),
			SessionID:   p.SessionID,
			Name:        p.Name,
			Hand:        DeserializeCards(p.Hand),
			Position:    p.Position,
			IsHost:      p.IsHost,
			IsConnected: p.IsConnected,
			LastSeen:    p.LastSeen,
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Position < players[j].Position })

	currentSuit := ""
	if rec.CurrentSuit != nil {
		currentSuit = *rec.CurrentSuit
	}
	winner := ""
	if rec.WinnerSessionID != nil {
		winner = *rec.WinnerSessionID
	}

	return &models.GameState{
		ID:                 rec.ID,
		Code:               rec.Code,
		Status:             models.GameStatus(rec.Status),
		HostSessionID:      rec.HostSessionID,
		Players:            players,
		CurrentPlayerIndex: rec.CurrentPlayer,
		Direction:          rec.Direction,
		CurrentSuit:        currentSuit,
		DrawPile:           DeserializeCards(rec.DrawPile),
		PlayPile:           DeserializeCards(rec.PlayPile),
		WinnerSessionID:    winner,
		Settings:           DeserializeSettings(rec.Settings),
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func playerRecordID(p *models.GamePlayerRecord) string {
	// ドメイン側のプレイヤーIDはDBの行IDから導出する
	return fmt.Sprintf("player-%d", p.ID)
}

// CreateGame は waiting 状態の新しいゲームとホストプレイヤーを作成します。
func CreateGame(db *gorm.DB, code, hostSessionID, hostName string, settings models.GameSettings, logger *zap.Logger) (*models.GameState, error) {
	rec := models.GameRecord{
		Code:          code,
		Status:        string(models.StatusWaiting),
		HostSessionID: hostSessionID,
		CurrentPlayer: 0,
		Direction:     models.DirectionForward,
		CurrentSuit:   nil,
		DrawPile:      "[]",
		PlayPile:      "[]",
		Settings:      SerializeSettings(settings),
		Players: []models.GamePlayerRecord{
			{
				SessionID:   hostSessionID,
				Name:        hostName,
				Hand:        "[]",
				Position:    0,
				IsHost:      true,
				IsConnected: true,
				LastSeen:    time.Now(),
			},
		},
	}
	if err := db.Create(&rec).Error; err != nil {
		logger.Error("ゲーム作成に失敗しました", zap.Error(err))
		return nil, err
	}
	return GetGameByID(db, rec.ID)
}

// GetGameByCode は参加コードからゲームを取得します。
func GetGameByCode(db *gorm.DB, code string) (*models.GameState, error) {
	var rec models.GameRecord
	err := db.Preload("Players").Where("code = ?", code).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return RecordToGameState(&rec), nil
}

// GetGameByID はIDからゲームを取得します。
func GetGameByID(db *gorm.DB, id uint) (*models.GameState, error) {
	var rec models.GameRecord
	err := db.Preload("Players").First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return RecordToGameState(&rec), nil
}

// IsGameCodeAvailable は参加コードが未使用かどうかを返します。
func IsGameCodeAvailable(db *gorm.DB, code string) (bool, error) {
	var count int64
	if err := db.Model(&models.GameRecord{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// AddPlayerToGame はゲームにプレイヤーを追加します。
// 既に同じセッションIDのプレイヤーがいる場合は再接続として扱います（冪等）。
// Position は参加時に割り当てられた後は変更しません。
func AddPlayerToGame(db *gorm.DB, gameID uint, sessionID, name string, logger *zap.Logger) (*models.GameState, error) {
	var existing models.GamePlayerRecord
	err := db.Where("game_record_id = ? AND session_id = ?", gameID, sessionID).First(&existing).Error

	if err == nil {
		// 再接続
		updates := map[string]interface{}{"is_connected": true, "last_seen": time.Now(), "name": name}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		var count int64
		if err := db.Model(&models.GamePlayerRecord{}).Where("game_record_id = ?", gameID).Count(&count).Error; err != nil {
			return nil, err
		}
		player := models.GamePlayerRecord{
			GameRecordID: gameID,
			SessionID:    sessionID,
			Name:         name,
			Hand:         "[]",
			Position:     int(count),
			IsHost:       false,
			IsConnected:  true,
			LastSeen:     time.Now(),
		}
		if err := db.Create(&player).Error; err != nil {
			logger.Error("プレイヤー追加に失敗しました", zap.Error(err))
			return nil, err
		}
	} else {
		return nil, err
	}

	// ポーリング中の他プレイヤーに変更を伝えるため updated_at を更新する
	if err := TouchGame(db, gameID); err != nil {
		return nil, err
	}
	return GetGameByID(db, gameID)
}

// RemovePlayerFromGame はプレイヤーを切断扱いにするか、完全に削除します。
// ロビー（waiting）では hardDelete、プレイ中は切断マークのみ。
func RemovePlayerFromGame(db *gorm.DB, gameID uint, sessionID string, hardDelete bool) (*models.GameState, error) {
	var player models.GamePlayerRecord
	err := db.Where("game_record_id = ? AND session_id = ?", gameID, sessionID).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GetGameByID(db, gameID)
	}
	if err != nil {
		return nil, err
	}

	if hardDelete {
		if err := db.Unscoped().Delete(&player).Error; err != nil {
			return nil, err
		}
	} else {
		updates := map[string]interface{}{"is_connected": false, "last_seen": time.Now()}
		if err := db.Model(&player).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := TouchGame(db, gameID); err != nil {
		return nil, err
	}
	return GetGameByID(db, gameID)
}

// GameStateUpdates は UpdateGameState で更新するフィールドの指定です。
// nil のフィールドは変更されません。
type GameStateUpdates struct {
	Status          *models.GameStatus
	CurrentPlayer   *int
	Direction       *int
	CurrentSuit     *string // 空文字は NULL（スート制約なし）として保存
	DrawPile        []models.Card
	PlayPile        []models.Card
	WinnerSessionID *string
}

// UpdateGameState はゲーム状態の指定フィールドをまとめて更新します。
func UpdateGameState(db *gorm.DB, gameID uint, updates GameStateUpdates) error {
	data := map[string]interface{}{}

	if updates.Status != nil {
		data["status"] = string(*updates.Status)
	}
	if updates.CurrentPlayer != nil {
		data["current_player"] = *updates.CurrentPlayer
	}
	if updates.Direction != nil {
		data["direction"] = *updates.Direction
	}
	if updates.CurrentSuit != nil {
		if *updates.CurrentSuit == "" {
			data["current_suit"] = nil
		} else {
			data["current_suit"] = *updates.CurrentSuit
		}
	}
	if updates.DrawPile != nil {
		data["draw_pile"] = SerializeCards(updates.DrawPile)
	}
	if updates.PlayPile != nil {
		data["play_pile"] = SerializeCards(updates.PlayPile)
	}
	if updates.WinnerSessionID != nil {
		if *updates.WinnerSessionID == "" {
			data["winner_session_id"] = nil
		} else {
			data["winner_session_id"] = *updates.WinnerSessionID
		}
	}
	data["updated_at"] = time.Now()

	return db.Model(&models.GameRecord{}).Where("id = ?", gameID).Updates(data).Error
}

// UpdatePlayerHand は1人のプレイヤーの手札を更新します。
func UpdatePlayerHand(db *gorm.DB, gameID uint, sessionID string, hand []models.Card) error {
	return db.Model(&models.GamePlayerRecord{}).
		Where("game_record_id = ? AND session_id = ?", gameID, sessionID).
		Update("hand", SerializeCards(hand)).Error
}

// HandUpdate は UpdatePlayersHands の1件分の更新です。
type HandUpdate struct {
	GameID    uint
	SessionID string
	Hand      []models.Card
}

// UpdatePlayersHands は複数プレイヤーの手札を1つのトランザクションで更新します。
func UpdatePlayersHands(db *gorm.DB, updates []HandUpdate) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&models.GamePlayerRecord{}).
				Where("game_record_id = ? AND session_id = ?", u.GameID, u.SessionID).
				Update("hand", SerializeCards(u.Hand)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePlayerLastSeen はポーリングのたびにプレイヤーの生存確認時刻を更新します。
func UpdatePlayerLastSeen(db *gorm.DB, gameID uint, sessionID string) error {
	updates := map[string]interface{}{"last_seen": time.Now(), "is_connected": true}
	return db.Model(&models.GamePlayerRecord{}).
		Where("game_record_id = ? AND session_id = ?", gameID, sessionID).
		Updates(updates).Error
}

// TouchGame は updated_at のみを更新し、ポーリング側に変更を伝えます。
func TouchGame(db *gorm.DB, gameID uint) error {
	return db.Model(&models.GameRecord{}).Where("id = ?", gameID).
		Update("updated_at", time.Now()).Error
}

// DeleteGame はゲームと参加者の行を完全に削除します。
func DeleteGame(db *gorm.DB, gameID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("game_record_id = ?", gameID).Delete(&models.GamePlayerRecord{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.GameRecord{}, gameID).Error
	})
}

// CleanupOldGames は放置されたゲームを削除します。
// waiting のまま24時間経過、または finished から1時間経過したものが対象。
func CleanupOldGames(db *gorm.DB, logger *zap.Logger) (int64, error) {
	oneDayAgo := time.Now().Add(-24 * time.Hour)
	oneHourAgo := time.Now().Add(-1 * time.Hour)

	staleIDs := []uint{}
	err := db.Model(&models.GameRecord{}).
		Where("(status = ? AND created_at < ?) OR (status = ? AND updated_at < ?)",
			string(models.StatusWaiting), oneDayAgo, string(models.StatusFinished), oneHourAgo).
		Pluck("id", &staleIDs).Error
	if err != nil {
		return 0, err
	}
	if len(staleIDs) == 0 {
		return 0, nil
	}

	if err := db.Unscoped().Where("game_record_id IN ?", staleIDs).Delete(&models.GamePlayerRecord{}).Error; err != nil {
		return 0, err
	}
	result := db.Unscoped().Where("id IN ?", staleIDs).Delete(&models.GameRecord{})
	if result.Error != nil {
		logger.Error("放置ゲームの削除に失敗しました", zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
