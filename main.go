package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/wengjjpaul/DKPhonicsCardGame/database" // PostgreSQLとRedisの初期化
	"github.com/wengjjpaul/DKPhonicsCardGame/handlers" // 各HTTPエンドポイントの処理
	"github.com/wengjjpaul/DKPhonicsCardGame/utils"    // ロガーの初期化とCronジョブ(放置ゲームの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(db, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"}, //ここにデプロイサーバーのオリジンを設定
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.GET("/api/session", func(c *gin.Context) {
		handlers.GetSession(c, rdb, logger)
	})
	router.PUT("/api/session", func(c *gin.Context) {
		handlers.UpdateSession(c, rdb, logger)
	})
	router.POST("/api/game", func(c *gin.Context) {
		handlers.CreateGame(c, db, rdb, logger)
	})
	router.GET("/api/game/:code", func(c *gin.Context) {
		handlers.GetGame(c, db, rdb, logger)
	})
	router.DELETE("/api/game/:code", func(c *gin.Context) {
		handlers.DeleteGame(c, db, rdb, logger)
	})
	router.POST("/api/game/:code/join", func(c *gin.Context) {
		handlers.JoinGame(c, db, rdb, logger)
	})
	router.POST("/api/game/:code/start", func(c *gin.Context) {
		handlers.StartGame(c, db, rdb, logger)
	})
	router.POST("/api/game/:code/play", func(c *gin.Context) {
		handlers.PlayCard(c, db, rdb, logger)
	})
	router.POST("/api/game/:code/draw", func(c *gin.Context) {
		handlers.DrawCard(c, db, rdb, logger)
	})
	router.POST("/api/game/:code/leave", func(c *gin.Context) {
		handlers.LeaveGame(c, db, rdb, logger)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()
}
