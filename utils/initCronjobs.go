package utils

import (
	"github.com/wengjjpaul/DKPhonicsCardGame/database"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronCleaner は放置されたゲームを定期的に削除します。
// waiting のまま24時間、finished から1時間で削除対象になります。
// ベストエフォートのハウスキーピングであり、ゲーム進行の安全性には関与しません。
func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 10分ごとに実行（"分 時 日 月 曜日"）
	c.AddFunc("*/10 * * * *", func() {
		deleted, err := database.CleanupOldGames(db, logger)
		if err != nil {
			logger.Error("放置ゲームのクリーンアップに失敗しました", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Info("放置ゲームを削除しました", zap.Int64("games_deleted", deleted))
		}
	})

	c.Start()
}
