package sessions

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 匿名セッション層。ブラウザごとに安定した不透明なセッションIDを発行します。
// 認証ではありません。同一クライアントからのリクエストで同じIDが返ること、
// 別クライアント間でIDが衝突しないことだけを保証します。
// セッション情報はRedisに保存し、クッキーには署名付きトークンのみを渡します。

const (
	CookieName = "phonics_session"
	sessionTTL = 30 * 24 * time.Hour // 30日
	cookieAge  = 30 * 24 * 60 * 60

	maxPlayerNameLength = 20
)

var jwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if key := os.Getenv("SESSION_SECRET"); key != "" {
		return []byte(key)
	}
	return []byte("phonics-session-secret")
}

// sessionClaims はクッキーに載せるJWTのクレームです。セッションIDのみを内包します。
type sessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.StandardClaims
}

// EnsureSession はリクエストのセッションを取得し、無ければ新規作成します。
// 戻り値の isNew は新規作成されたかどうかを示します。
func EnsureSession(c *gin.Context, rdb *redis.Client, logger *zap.Logger) (models.SessionData, bool, error) {
	ctx := c.Request.Context()

	// クッキーのトークンからセッションIDを取り出す
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		if sessionID := parseSessionToken(cookie, logger); sessionID != "" {
			if session, err := fetchSession(ctx, rdb, sessionID); err == nil {
				return session, false, nil
			}
			// Redis側で期限切れの場合は作り直す
		}
	}

	session, err := createSession(ctx, rdb, logger)
	if err != nil {
		return models.SessionData{}, false, err
	}

	token, err := signSessionToken(session.SessionID)
	if err != nil {
		logger.Error("セッショントークンの署名に失敗しました", zap.Error(err))
		return models.SessionData{}, false, err
	}
	c.SetCookie(CookieName, token, cookieAge, "/", "", false, true)

	return session, true, nil
}

func parseSessionToken(tokenString string, logger *zap.Logger) string {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		logger.Warn("セッショントークンのパースに失敗", zap.Error(err))
		return ""
	}
	return claims.SessionID
}

func signSessionToken(sessionID string) (string, error) {
	claims := &sessionClaims{
		SessionID: sessionID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(sessionTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func createSession(ctx context.Context, rdb *redis.Client, logger *zap.Logger) (models.SessionData, error) {
	session := models.SessionData{
		SessionID: uuid.New().String(),
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := storeSession(ctx, rdb, session); err != nil {
		logger.Error("Error storing session info in Redis", zap.Error(err))
		return models.SessionData{}, err
	}
	return session, nil
}

func fetchSession(ctx context.Context, rdb *redis.Client, sessionID string) (models.SessionData, error) {
	raw, err := rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		return models.SessionData{}, err
	}
	var session models.SessionData
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.SessionData{}, err
	}
	return session, nil
}

func storeSession(ctx context.Context, rdb *redis.Client, session models.SessionData) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, "session:"+session.SessionID, raw, sessionTTL).Err()
}

// sanitizePlayerName は表示名の前後の空白を取り除き、20文字に切り詰めます。
func sanitizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > maxPlayerNameLength {
		name = string(runes[:maxPlayerNameLength])
	}
	return name
}

// UpdatePlayerName はセッションに表示名を保存します。
// 次回以降のゲーム作成・参加時のデフォルト名として使われます。
func UpdatePlayerName(ctx context.Context, rdb *redis.Client, sessionID, playerName string) (models.SessionData, error) {
	session, err := fetchSession(ctx, rdb, sessionID)
	if err != nil {
		return models.SessionData{}, err
	}
	session.PlayerName = sanitizePlayerName(playerName)
	if err := storeSession(ctx, rdb, session); err != nil {
		return models.SessionData{}, err
	}
	return session, nil
}
